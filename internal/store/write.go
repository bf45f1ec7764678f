package store

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/listing-loader/internal/model"
)

// ErrUnknownTag is returned when a business references a tag that is not in
// the tag set passed to Write.
var ErrUnknownTag = eris.New("store: business references tag outside tag set")

// inserter runs single-row inserts inside an open transaction and returns
// generated keys.
type inserter interface {
	insertTag(ctx context.Context, name string) (int64, error)
	insertBusiness(ctx context.Context, b model.Business) (int64, error)
	insertLink(ctx context.Context, tagID, businessID int64) error
}

// writeBatch inserts all tags first, then each business followed by its
// links. The order keeps every link pointing at rows that already exist.
func writeBatch(ctx context.Context, ins inserter, businesses []model.Business, tags model.TagSet) (*WriteResult, error) {
	res := &WriteResult{}

	tagIDs := make(map[string]int64, tags.Len())
	for _, name := range tags.Names() {
		id, err := ins.insertTag(ctx, name)
		if err != nil {
			return nil, eris.Wrapf(err, "store: insert tag %q", name)
		}
		tagIDs[name] = id
		res.Tags++
	}

	for _, b := range businesses {
		businessID, err := ins.insertBusiness(ctx, b)
		if err != nil {
			return nil, eris.Wrapf(err, "store: insert business %q", b.Name)
		}
		res.Businesses++

		for _, name := range b.Tags {
			tagID, ok := tagIDs[name]
			if !ok {
				return nil, eris.Wrapf(ErrUnknownTag, "business %q tag %q", b.Name, name)
			}
			if err := ins.insertLink(ctx, tagID, businessID); err != nil {
				return nil, eris.Wrapf(err, "store: link business %d to tag %d", businessID, tagID)
			}
			res.Links++
		}

		zap.L().Debug("business written",
			zap.String("name", b.Name),
			zap.Int64("id_b", businessID),
			zap.Int("tags", len(b.Tags)),
		)
	}

	return res, nil
}

const statsQuery = `SELECT
	(SELECT COUNT(*) FROM tags),
	(SELECT COUNT(*) FROM business),
	(SELECT COUNT(*) FROM business_tag),
	(SELECT COUNT(*) FROM business_tag bt
		LEFT JOIN tags t ON t.id_tag = bt.id_tag
		LEFT JOIN business b ON b.id_b = bt.id_b
		WHERE t.id_tag IS NULL OR b.id_b IS NULL)`

const (
	selectTags       = `SELECT id_tag, name_tag FROM tags ORDER BY id_tag`
	selectBusinesses = `SELECT id_b, name_b, phone, website, address, city, zip_code, lat, lng, rating, g_rating FROM business ORDER BY id_b`
	selectLinks      = `SELECT id_tag, id_b FROM business_tag ORDER BY id_b, id_tag`
)

type scannable interface {
	Scan(dest ...any) error
}

func scanBusiness(row scannable) (BusinessRow, error) {
	var r BusinessRow
	err := row.Scan(
		&r.ID, &r.Name, &r.Phone, &r.Website, &r.Address, &r.City, &r.ZipCode,
		&r.Latitude, &r.Longitude, &r.Rating, &r.GoogleRating,
	)
	return r, err
}
