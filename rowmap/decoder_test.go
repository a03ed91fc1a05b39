package rowmap

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coderi421/ormsample/assemble"
	"github.com/coderi421/ormsample/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

// queryOne 返回已经 Next 过一次的 rows
func queryOne(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock, rows *sqlmock.Rows) *sql.Rows {
	t.Helper()
	mock.ExpectQuery("SELECT .*").WillReturnRows(rows)
	res, err := db.Query("SELECT * FROM t")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = res.Close()
	})
	require.True(t, res.Next())
	return res
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func TestDecoder_Decode(t *testing.T) {
	testCases := []struct {
		name    string
		rows    *sqlmock.Rows
		wantVal *model.Product
		wantErr error
	}{
		{
			name: "all columns",
			rows: sqlmock.NewRows([]string{"ProductID", "Name", "ProductNumber", "Color", "ListPrice", "ProductSubcategoryID"}).
				AddRow(int64(680), "HL Road Frame - Black, 58", "FR-R92B-58", "Black", 1431.5, int64(14)),
			wantVal: &model.Product{
				ProductID:            680,
				Name:                 "HL Road Frame - Black, 58",
				ProductNumber:        "FR-R92B-58",
				Color:                strPtr("Black"),
				ListPrice:            func() *float64 { f := 1431.5; return &f }(),
				ProductSubcategoryID: intPtr(14),
			},
		},
		{
			name: "optional columns absent",
			rows: sqlmock.NewRows([]string{"ProductID", "Name", "ProductNumber"}).
				AddRow(int64(1), "Adjustable Race", "AR-5381"),
			wantVal: &model.Product{ProductID: 1, Name: "Adjustable Race", ProductNumber: "AR-5381"},
		},
		{
			name: "null into nullable",
			rows: sqlmock.NewRows([]string{"ProductID", "Name", "ProductNumber", "Color", "ProductSubcategoryID"}).
				AddRow(int64(1), "Adjustable Race", "AR-5381", nil, nil),
			wantVal: &model.Product{ProductID: 1, Name: "Adjustable Race", ProductNumber: "AR-5381"},
		},
		{
			name: "case insensitive column",
			rows: sqlmock.NewRows([]string{"productid", "NAME", "ProductNumber"}).
				AddRow(int64(1), "Adjustable Race", "AR-5381"),
			wantVal: &model.Product{ProductID: 1, Name: "Adjustable Race", ProductNumber: "AR-5381"},
		},
		{
			name: "unknown column",
			rows: sqlmock.NewRows([]string{"ProductID", "Name", "ProductNumber", "SafetyStockLevel"}).
				AddRow(int64(1), "Adjustable Race", "AR-5381", int64(1000)),
			wantErr: ErrUnknownColumn,
		},
		{
			name: "missing column",
			rows: sqlmock.NewRows([]string{"ProductID", "Name"}).
				AddRow(int64(1), "Adjustable Race"),
			wantErr: ErrMissingColumn,
		},
		{
			name: "null into not null",
			rows: sqlmock.NewRows([]string{"ProductID", "Name", "ProductNumber"}).
				AddRow(int64(1), nil, "AR-5381"),
			wantErr: ErrNullColumn,
		},
	}

	d := NewDecoder()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			rows := queryOne(t, db, mock, tc.rows)

			p := &model.Product{}
			err := d.Decode(rows, p)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantVal, p)
		})
	}
}

var pairColumns = []string{"ProductSubcategoryID", "Name", "ProductID", "Name", "ProductNumber", "ProductSubcategoryID"}

func TestDecoder_DecodePair(t *testing.T) {
	testCases := []struct {
		name        string
		rows        *sqlmock.Rows
		splitOn     string
		wantParent  *model.ProductSubcategory
		wantChild   *model.Product
		wantPresent bool
		wantErr     error
	}{
		{
			name:    "child present",
			splitOn: "ProductID",
			rows: sqlmock.NewRows(pairColumns).
				AddRow(int64(1), "Mountain Bikes", int64(771), "Mountain-100 Silver, 38", "BK-M82S-38", int64(1)),
			wantParent: &model.ProductSubcategory{ProductSubcategoryID: 1, Name: "Mountain Bikes"},
			wantChild: &model.Product{
				ProductID:            771,
				Name:                 "Mountain-100 Silver, 38",
				ProductNumber:        "BK-M82S-38",
				ProductSubcategoryID: intPtr(1),
			},
			wantPresent: true,
		},
		{
			// LEFT JOIN 没有匹配到产品
			name:    "child absent",
			splitOn: "ProductID",
			rows: sqlmock.NewRows(pairColumns).
				AddRow(int64(40), "Caps", nil, nil, nil, nil),
			wantParent: &model.ProductSubcategory{ProductSubcategoryID: 40, Name: "Caps"},
			wantChild:  &model.Product{},
		},
		{
			name:    "split column lower case",
			splitOn: "productid",
			rows: sqlmock.NewRows(pairColumns).
				AddRow(int64(1), "Mountain Bikes", int64(771), "Mountain-100 Silver, 38", "BK-M82S-38", int64(1)),
			wantParent: &model.ProductSubcategory{ProductSubcategoryID: 1, Name: "Mountain Bikes"},
			wantChild: &model.Product{
				ProductID:            771,
				Name:                 "Mountain-100 Silver, 38",
				ProductNumber:        "BK-M82S-38",
				ProductSubcategoryID: intPtr(1),
			},
			wantPresent: true,
		},
		{
			name:    "split column not found",
			splitOn: "Id",
			rows: sqlmock.NewRows(pairColumns).
				AddRow(int64(1), "Mountain Bikes", int64(771), "Mountain-100 Silver, 38", "BK-M82S-38", int64(1)),
			wantErr: ErrSplitColumnNotFound,
		},
		{
			name:    "unknown parent column",
			splitOn: "ProductID",
			rows: sqlmock.NewRows([]string{"ProductSubcategoryID", "Name", "rowguid", "ProductID", "Name", "ProductNumber"}).
				AddRow(int64(1), "Mountain Bikes", "x", int64(771), "Mountain-100 Silver, 38", "BK-M82S-38"),
			wantErr: ErrUnknownColumn,
		},
		{
			name:    "missing child column",
			splitOn: "ProductID",
			rows: sqlmock.NewRows([]string{"ProductSubcategoryID", "Name", "ProductID", "Name"}).
				AddRow(int64(1), "Mountain Bikes", int64(771), "Mountain-100 Silver, 38"),
			wantErr: ErrMissingColumn,
		},
		{
			name:    "null parent name",
			splitOn: "ProductID",
			rows: sqlmock.NewRows(pairColumns).
				AddRow(int64(1), nil, int64(771), "Mountain-100 Silver, 38", "BK-M82S-38", int64(1)),
			wantErr: ErrNullColumn,
		},
		{
			name:    "null child name",
			splitOn: "ProductID",
			rows: sqlmock.NewRows(pairColumns).
				AddRow(int64(1), "Mountain Bikes", int64(771), nil, "BK-M82S-38", int64(1)),
			wantErr: ErrNullColumn,
		},
	}

	d := NewDecoder()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			rows := queryOne(t, db, mock, tc.rows)

			parent, child := &model.ProductSubcategory{}, &model.Product{}
			present, err := d.DecodePair(rows, parent, child, tc.splitOn)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantPresent, present)
			assert.Equal(t, tc.wantParent, parent)
			assert.Equal(t, tc.wantChild, child)
		})
	}
}

func TestEachPair(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .*").WillReturnRows(sqlmock.NewRows(pairColumns).
		AddRow(int64(1), "Mountain Bikes", int64(771), "Mountain-100 Silver, 38", "BK-M82S-38", int64(1)).
		AddRow(int64(1), "Mountain Bikes", int64(772), "Mountain-100 Silver, 42", "BK-M82S-42", int64(1)).
		AddRow(int64(1), "Mountain Bikes", int64(771), "Mountain-100 Silver, 38", "BK-M82S-38", int64(1)).
		AddRow(int64(2), "Road Bikes", int64(749), "Road-150 Red, 62", "BK-R93R-62", int64(2)).
		AddRow(int64(40), "Caps", nil, nil, nil, nil))
	rows, err := db.Query("SELECT c.ProductSubcategoryID, c.Name, p.ProductID FROM x")
	require.NoError(t, err)
	defer rows.Close()

	g := assemble.NewGrouping[int, *model.ProductSubcategory, *model.Product]()
	err = EachPair(NewDecoder(), rows, "ProductID", func(c *model.ProductSubcategory, p *model.Product) error {
		_, err := g.Add(c, p)
		return err
	})
	require.NoError(t, err)

	parents := g.Parents()
	require.Len(t, parents, 3)
	assert.Equal(t, "Mountain Bikes", parents[0].Name)
	assert.Len(t, parents[0].Products, 2)
	assert.Len(t, parents[1].Products, 1)
	assert.Equal(t, "Caps", parents[2].Name)
	assert.Nil(t, parents[2].Products)
	assert.NoError(t, mock.ExpectationsWereMet())
}
