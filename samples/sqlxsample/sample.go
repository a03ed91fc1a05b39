// Package sqlxsample runs the samples with sqlx: every query is written by
// hand and the results are mapped onto structs by their db tags.
package sqlxsample

import (
	"time"

	"github.com/coderi421/ormsample"
	"github.com/coderi421/ormsample/model"
	"github.com/coderi421/ormsample/rowmap"
	"github.com/coderi421/ormsample/sampledb"
	"github.com/coderi421/ormsample/samples"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	simpleQuerySQL = `SELECT ProductID, Name, ProductNumber FROM Production.Product ORDER BY ProductID`
	paramQuerySQL  = `SELECT * FROM Production.Product WHERE Color = :Color OR ProductID = :Id ORDER BY ProductID`

	// 点号别名让 sqlx 把子分类的列写进 Product.ProductSubcategory
	manyToOneSQL = `SELECT p.ProductID, p.Name, p.ProductNumber,
    c.ProductSubcategoryID AS "ProductSubcategory.ProductSubcategoryID",
    c.Name AS "ProductSubcategory.Name"
FROM Production.ProductSubcategory AS c
INNER JOIN Production.Product AS p ON p.ProductSubcategoryID = c.ProductSubcategoryID
ORDER BY p.Name`

	insertLocationSQL = `INSERT INTO Production.Location (Name, CostRate, Availability, ModifiedDate)
VALUES (:Name, :CostRate, :Availability, :ModifiedDate)`
	updateLocationSQL = `UPDATE Production.Location SET CostRate = :CostRate WHERE LocationID = :LocationID`
	selectLocationSQL = `SELECT * FROM Production.Location WHERE LocationID = ?`
	deleteLocationSQL = `DELETE FROM Production.Location WHERE LocationID = ?`
)

type Option func(s *Sample)

func WithLogger(l *zap.Logger) Option {
	return func(s *Sample) {
		s.logger = l
	}
}

type Sample struct {
	db      *sqlx.DB
	dialect sampledb.Dialect
	decoder *rowmap.Decoder
	logger  *zap.Logger
}

var _ ormsample.Sample = &Sample{}

func New(db *sampledb.DB, opts ...Option) *Sample {
	s := &Sample{
		db:      sqlx.NewDb(db.SQL(), db.Dialect().DriverName()),
		dialect: db.Dialect(),
		decoder: rowmap.NewDecoder(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sample) Name() string {
	return "sqlx"
}

func (s *Sample) SimpleQuery(ctx *ormsample.Context) error {
	var products []model.Product
	if err := s.db.SelectContext(ctx.Ctx, &products, simpleQuerySQL); err != nil {
		return err
	}
	samples.PrintProducts(ctx, products)
	return nil
}

func (s *Sample) ParamQuery(ctx *ormsample.Context) error {
	query, args, err := sqlx.Named(paramQuerySQL, map[string]any{
		"Color": "Blue",
		"Id":    1,
	})
	if err != nil {
		return err
	}
	var products []model.Product
	if err = s.db.SelectContext(ctx.Ctx, &products, s.db.Rebind(query), args...); err != nil {
		return err
	}
	samples.PrintProducts(ctx, products)
	return nil
}

func (s *Sample) ManyToOne(ctx *ormsample.Context) error {
	var products []model.Product
	if err := s.db.SelectContext(ctx.Ctx, &products, manyToOneSQL); err != nil {
		return err
	}
	samples.PrintProductsWithSubcategory(ctx, products)
	return nil
}

// OneToMany 一行是一对 (子分类, 产品)，sqlx 本身不会分组
func (s *Sample) OneToMany(ctx *ormsample.Context) error {
	rows, err := s.db.QueryxContext(ctx.Ctx, samples.SubcategoryProductsSQL)
	if err != nil {
		return err
	}
	subcategories, err := samples.GroupSubcategories(s.decoder, rows.Rows)
	if err != nil {
		return err
	}
	s.logger.Debug("sqlx: grouped subcategories", zap.Int("count", len(subcategories)))
	samples.PrintSubcategories(ctx, subcategories)
	return nil
}

func (s *Sample) DynamicQuery(ctx *ormsample.Context) error {
	rows, err := s.db.QueryxContext(ctx.Ctx, samples.TopSalesSQL)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		row := model.Row{}
		if err = rows.MapScan(row); err != nil {
			return err
		}
		total, err := row.Float("Total")
		if err != nil {
			return err
		}
		name, err := row.String("Name")
		if err != nil {
			return err
		}
		ctx.Printf("%02.0f * %s", total, name)
	}
	return rows.Err()
}

func (s *Sample) StoredProcedure(ctx *ormsample.Context) error {
	query, args, err := s.dialect.Procedure(sampledb.ProcGetEmployeeManagers, samples.EmployeeID)
	if err != nil {
		return err
	}
	rows, err := s.db.QueryxContext(ctx.Ctx, s.db.Rebind(query), args...)
	if err != nil {
		return err
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		row := model.Row{}
		if err = rows.MapScan(row); err != nil {
			return err
		}
		if err = samples.PrintManager(ctx, row); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Sample) Insert(ctx *ormsample.Context) error {
	res, err := s.db.NamedExecContext(ctx.Ctx, insertLocationSQL, model.NewLocation(time.Now()))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err = ctx.SetLocationID(id); err != nil {
		return err
	}
	s.logger.Debug("sqlx: location inserted", zap.Int64("location_id", id))
	return s.printLocation(ctx, id)
}

func (s *Sample) Update(ctx *ormsample.Context) error {
	id, err := ctx.LocationID()
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx.Ctx, updateLocationSQL, map[string]any{
		"LocationID": id,
		"CostRate":   500,
	})
	if err != nil {
		return err
	}
	return s.printLocation(ctx, id)
}

func (s *Sample) Delete(ctx *ormsample.Context) error {
	id, err := ctx.LocationID()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx.Ctx, s.db.Rebind(deleteLocationSQL), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	samples.PrintDeleted(ctx, n)
	return nil
}

func (s *Sample) printLocation(ctx *ormsample.Context, id int64) error {
	var loc model.Location
	if err := s.db.GetContext(ctx.Ctx, &loc, s.db.Rebind(selectLocationSQL), id); err != nil {
		return err
	}
	samples.PrintLocation(ctx, &loc)
	return nil
}
