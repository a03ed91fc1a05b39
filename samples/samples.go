// Package samples holds what the samplers have in common: the queries that
// are written by hand for every library and the shapes of their output.
package samples

import (
	"database/sql"

	"github.com/coderi421/ormsample"
	"github.com/coderi421/ormsample/assemble"
	"github.com/coderi421/ormsample/model"
	"github.com/coderi421/ormsample/rowmap"
)

// EmployeeID 存储过程从这个员工开始往上找经理
const EmployeeID = 257

const (
	// SubcategoryProductsSQL 用 LEFT JOIN，没有产品的子分类也会出现一次
	SubcategoryProductsSQL = `SELECT c.ProductSubcategoryID, c.Name, p.ProductID, p.Name, p.ProductNumber, p.ProductSubcategoryID
FROM Production.ProductSubcategory AS c
LEFT JOIN Production.Product AS p ON p.ProductSubcategoryID = c.ProductSubcategoryID
ORDER BY c.ProductSubcategoryID, p.Name`
	// SplitOn 子分类和产品两部分列的分界
	SplitOn = "ProductID"

	TopSalesSQL = `SELECT p.Name, SUM(sd.LineTotal) AS Total
FROM Production.Product AS p
INNER JOIN Sales.SalesOrderDetail AS sd ON sd.ProductID = p.ProductID
GROUP BY p.Name
ORDER BY Total DESC
LIMIT 10`
)

func PrintProducts(ctx *ormsample.Context, products []model.Product) {
	for _, p := range products {
		ctx.Printf("%d: %s - %s", p.ProductID, p.ProductNumber, p.Name)
	}
}

// PrintProductsWithSubcategory prints every product followed by the
// subcategory it belongs to.
func PrintProductsWithSubcategory(ctx *ormsample.Context, products []model.Product) {
	for _, p := range products {
		ctx.Printf("Product: %d, %s - %s", p.ProductID, p.ProductNumber, p.Name)
		if p.ProductSubcategory != nil {
			ctx.Printf("   --> Subcategory: %d, %s", p.ProductSubcategory.ProductSubcategoryID, p.ProductSubcategory.Name)
		}
	}
}

// GroupSubcategories reads the rows of SubcategoryProductsSQL into one
// subcategory per ProductSubcategoryID, in the order they first appear.
// rows is closed on return.
func GroupSubcategories(d *rowmap.Decoder, rows *sql.Rows) ([]*model.ProductSubcategory, error) {
	defer func() {
		_ = rows.Close()
	}()
	g := assemble.NewGrouping[int, *model.ProductSubcategory, *model.Product]()
	err := rowmap.EachPair(d, rows, SplitOn, func(c *model.ProductSubcategory, p *model.Product) error {
		_, err := g.Add(c, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g.Parents(), nil
}

func PrintSubcategories(ctx *ormsample.Context, subcategories []*model.ProductSubcategory) {
	for _, c := range subcategories {
		ctx.Printf("%d: %s", c.ProductSubcategoryID, c.Name)
		for _, p := range c.SortedProducts() {
			ctx.Printf("   * Product: %d, %s: %s", p.ProductID, p.ProductNumber, p.Name)
		}
	}
}

// PrintManager prints one row of the employee managers procedure.
func PrintManager(ctx *ormsample.Context, row model.Row) error {
	level, err := row.Int("RecursionLevel")
	if err != nil {
		return err
	}
	vals := make([]any, 0, 6)
	vals = append(vals, level)
	for _, col := range []string{"FirstName", "LastName", "OrganizationNode", "ManagerFirstName", "ManagerLastName"} {
		val, err := row.String(col)
		if err != nil {
			return err
		}
		vals = append(vals, val)
	}
	ctx.Printf("%d * %s %s - OrgNode: %s, Manager: %s %s", vals...)
	return nil
}

func PrintLocation(ctx *ormsample.Context, loc *model.Location) {
	ctx.Printf("%d - %s: %s", loc.LocationID, loc.Name, ctx.Money(loc.CostRate))
}

func PrintDeleted(ctx *ormsample.Context, n int64) {
	ctx.Printf("%d record(s) deleted", n)
}
