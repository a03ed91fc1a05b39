// Package gormsample runs the samples with gorm: table and column names come
// from the model tags, relations are loaded by joins and only the queries
// gorm cannot express are written by hand.
package gormsample

import (
	"time"

	"github.com/coderi421/ormsample"
	"github.com/coderi421/ormsample/model"
	"github.com/coderi421/ormsample/rowmap"
	"github.com/coderi421/ormsample/sampledb"
	"github.com/coderi421/ormsample/samples"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const paramQuerySQL = `SELECT * FROM Production.Product WHERE Color = @Color OR ProductID = @Id ORDER BY ProductID`

type Option func(s *Sample)

func WithLogger(l *zap.Logger) Option {
	return func(s *Sample) {
		s.logger = l
	}
}

type Sample struct {
	db      *gorm.DB
	dialect sampledb.Dialect
	decoder *rowmap.Decoder
	logger  *zap.Logger
}

var _ ormsample.Sample = &Sample{}

// New opens gorm on top of the connection pool of db.
func New(db *sampledb.DB, opts ...Option) (*Sample, error) {
	s := &Sample{
		dialect: db.Dialect(),
		decoder: rowmap.NewDecoder(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gdb, err := gorm.Open(dialector(db), &gorm.Config{
		// 表名和列名保持示例库的写法
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
			NoLowerCase:   true,
		},
		Logger:                 NewLogger(s.logger),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	s.db = gdb
	return s, nil
}

func dialector(db *sampledb.DB) gorm.Dialector {
	if db.Dialect() == sampledb.MySQL {
		return mysql.New(mysql.Config{Conn: db.SQL()})
	}
	return &sqlite.Dialector{DriverName: db.Dialect().DriverName(), Conn: db.SQL()}
}

func (s *Sample) Name() string {
	return "gorm"
}

func (s *Sample) SimpleQuery(ctx *ormsample.Context) error {
	var products []model.Product
	err := s.db.WithContext(ctx.Ctx).
		Select("ProductID", "Name", "ProductNumber").
		Order("ProductID").
		Find(&products).Error
	if err != nil {
		return err
	}
	samples.PrintProducts(ctx, products)
	return nil
}

func (s *Sample) ParamQuery(ctx *ormsample.Context) error {
	var products []model.Product
	err := s.db.WithContext(ctx.Ctx).
		Raw(paramQuerySQL, map[string]any{"Color": "Blue", "Id": 1}).
		Scan(&products).Error
	if err != nil {
		return err
	}
	samples.PrintProducts(ctx, products)
	return nil
}

// ManyToOne 用 belongs to 关系做 INNER JOIN，子分类的列由 gorm 带别名查出来
func (s *Sample) ManyToOne(ctx *ormsample.Context) error {
	var products []model.Product
	err := s.db.WithContext(ctx.Ctx).
		InnerJoins("ProductSubcategory").
		Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: "Name"}}).
		Find(&products).Error
	if err != nil {
		return err
	}
	samples.PrintProductsWithSubcategory(ctx, products)
	return nil
}

// OneToMany gorm 的 Preload 会发两条查询，这里和 sqlx 一样只用一条 JOIN
func (s *Sample) OneToMany(ctx *ormsample.Context) error {
	rows, err := s.db.WithContext(ctx.Ctx).Raw(samples.SubcategoryProductsSQL).Rows()
	if err != nil {
		return err
	}
	subcategories, err := samples.GroupSubcategories(s.decoder, rows)
	if err != nil {
		return err
	}
	s.logger.Debug("gorm: grouped subcategories", zap.Int("count", len(subcategories)))
	samples.PrintSubcategories(ctx, subcategories)
	return nil
}

func (s *Sample) DynamicQuery(ctx *ormsample.Context) error {
	var rows []map[string]any
	if err := s.db.WithContext(ctx.Ctx).Raw(samples.TopSalesSQL).Scan(&rows).Error; err != nil {
		return err
	}
	for _, m := range rows {
		row := model.Row(m)
		total, err := row.Float("Total")
		if err != nil {
			return err
		}
		name, err := row.String("Name")
		if err != nil {
			return err
		}
		ctx.Printf("%s * %s", ctx.Money(total), name)
	}
	return nil
}

func (s *Sample) StoredProcedure(ctx *ormsample.Context) error {
	query, args, err := s.dialect.Procedure(sampledb.ProcGetEmployeeManagers, samples.EmployeeID)
	if err != nil {
		return err
	}
	var rows []map[string]any
	if err = s.db.WithContext(ctx.Ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return err
	}
	for _, m := range rows {
		if err = samples.PrintManager(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sample) Insert(ctx *ormsample.Context) error {
	loc := model.NewLocation(time.Now())
	if err := s.db.WithContext(ctx.Ctx).Create(loc).Error; err != nil {
		return err
	}
	if err := ctx.SetLocationID(loc.LocationID); err != nil {
		return err
	}
	s.logger.Debug("gorm: location inserted", zap.Int64("location_id", loc.LocationID))
	return s.printLocation(ctx, loc.LocationID)
}

func (s *Sample) Update(ctx *ormsample.Context) error {
	id, err := ctx.LocationID()
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx.Ctx).
		Model(&model.Location{LocationID: id}).
		Update("CostRate", 500).Error
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
	res := s.db.WithContext(ctx.Ctx).Delete(&model.Location{}, id)
	if res.Error != nil {
		return res.Error
	}
	samples.PrintDeleted(ctx, res.RowsAffected)
	return nil
}

func (s *Sample) printLocation(ctx *ormsample.Context, id int64) error {
	var loc model.Location
	if err := s.db.WithContext(ctx.Ctx).First(&loc, id).Error; err != nil {
		return err
	}
	samples.PrintLocation(ctx, &loc)
	return nil
}
