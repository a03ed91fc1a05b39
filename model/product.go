// Package model holds the AdventureWorks subset the samples query.
//
// Every record carries two sets of tags: `db` for sqlx and the row decoder,
// `gorm` for gorm. Column names keep the PascalCase of the sample database.
package model

import (
	"sort"
)

// Product 对应 Production.Product
type Product struct {
	ProductID     int      `db:"ProductID" gorm:"column:ProductID;primaryKey"`
	Name          string   `db:"Name" gorm:"column:Name"`
	ProductNumber string   `db:"ProductNumber" gorm:"column:ProductNumber"`
	Color         *string  `db:"Color,optional" gorm:"column:Color"`
	ListPrice     *float64 `db:"ListPrice,optional" gorm:"column:ListPrice"`
	// ProductSubcategoryID 可以为 NULL，例如 Adjustable Race 没有子分类
	ProductSubcategoryID *int `db:"ProductSubcategoryID,optional" gorm:"column:ProductSubcategoryID"`

	// ProductSubcategory is filled by the many-to-one sample and by Adopt.
	ProductSubcategory *ProductSubcategory `db:"ProductSubcategory" gorm:"foreignKey:ProductSubcategoryID;references:ProductSubcategoryID"`
}

func (*Product) TableName() string {
	return "Production.Product"
}

// Present reports whether the join row carried a product.
// A LEFT JOIN decodes a subcategory without products into a nil *Product.
func (p *Product) Present() bool {
	return p != nil
}

// ProductSubcategory 对应 Production.ProductSubcategory
type ProductSubcategory struct {
	ProductSubcategoryID int    `db:"ProductSubcategoryID" gorm:"column:ProductSubcategoryID;primaryKey"`
	Name                 string `db:"Name" gorm:"column:Name"`

	// Products 以 ProductID 为 key，天然去重
	// 在第一次 Adopt 之前是 nil
	Products map[int]*Product `db:"-" gorm:"-"`
}

func (*ProductSubcategory) TableName() string {
	return "Production.ProductSubcategory"
}

// GroupKey implements assemble.Parent. 0 is a valid key; a NULL
// ProductSubcategoryID never gets here, the decoder rejects it.
func (c *ProductSubcategory) GroupKey() (int, bool) {
	if c == nil {
		return 0, false
	}
	return c.ProductSubcategoryID, true
}

// Adopt implements assemble.Parent. Every adopted product points at c, the
// canonical subcategory, even when the set already holds its ProductID.
func (c *ProductSubcategory) Adopt(p *Product) {
	p.ProductSubcategory = c
	if c.Products == nil {
		c.Products = make(map[int]*Product, 8)
	}
	if _, ok := c.Products[p.ProductID]; ok {
		return
	}
	c.Products[p.ProductID] = p
}

// SortedProducts returns the products ordered by name, then by ID.
func (c *ProductSubcategory) SortedProducts() []*Product {
	res := make([]*Product, 0, len(c.Products))
	for _, p := range c.Products {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Name != res[j].Name {
			return res[i].Name < res[j].Name
		}
		return res[i].ProductID < res[j].ProductID
	})
	return res
}
