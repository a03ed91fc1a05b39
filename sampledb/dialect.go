package sampledb

import (
	"github.com/coderi421/ormsample/internal/errs"
)

// ProcGetEmployeeManagers walks the management chain above an employee.
// Result columns: RecursionLevel, BusinessEntityID, FirstName, LastName,
// OrganizationNode, ManagerFirstName, ManagerLastName.
const ProcGetEmployeeManagers = "uspGetEmployeeManagers"

var (
	ErrUnknownProcedure  = errs.ErrUnknownProcedure
	ErrUnsupportedDriver = errs.ErrUnsupportedDriver
)

var (
	MySQL   Dialect = &mysqlDialect{}
	SQLite3 Dialect = &sqlite3Dialect{}
)

type Dialect interface {
	// DriverName 是 sqlx 用来决定占位符的驱动名，gorm 也用它选方言
	DriverName() string
	// Procedure 返回调用存储过程的语句和参数
	Procedure(name string, args ...any) (string, []any, error)
	// schemaFile 建表语句所在的文件
	schemaFile() string
}

// DialectOf 根据驱动名找到方言
func DialectOf(driver string) (Dialect, error) {
	switch driver {
	case "", "sqlite3", "sqlite":
		return SQLite3, nil
	case "mysql":
		return MySQL, nil
	default:
		return nil, errs.NewErrUnsupportedDriver(driver)
	}
}

type mysqlDialect struct{}

func (m *mysqlDialect) DriverName() string {
	return "mysql"
}

func (m *mysqlDialect) Procedure(name string, args ...any) (string, []any, error) {
	switch name {
	case ProcGetEmployeeManagers:
		return "CALL HumanResources.uspGetEmployeeManagers(?)", args, nil
	default:
		return "", nil, errs.NewErrUnknownProcedure(name)
	}
}

func (m *mysqlDialect) schemaFile() string {
	return "schema/mysql.sql"
}

// sqlite3Dialect SQLite 没有存储过程，直接把过程体展开成递归 CTE
type sqlite3Dialect struct{}

func (s *sqlite3Dialect) DriverName() string {
	return "sqlite3"
}

func (s *sqlite3Dialect) Procedure(name string, args ...any) (string, []any, error) {
	switch name {
	case ProcGetEmployeeManagers:
		return getEmployeeManagersCTE, args, nil
	default:
		return "", nil, errs.NewErrUnknownProcedure(name)
	}
}

func (s *sqlite3Dialect) schemaFile() string {
	return "schema/sqlite.sql"
}

// 和 MySQL 里的 HumanResources.uspGetEmployeeManagers 是同一个查询
const getEmployeeManagersCTE = `WITH RECURSIVE EMP_cte (BusinessEntityID, ManagerID, FirstName, LastName, OrganizationNode, RecursionLevel) AS (
    SELECT e.BusinessEntityID, e.ManagerID, p.FirstName, p.LastName, e.OrganizationNode, 0
    FROM HumanResources.Employee AS e
    INNER JOIN Person.Person AS p ON p.BusinessEntityID = e.BusinessEntityID
    WHERE e.BusinessEntityID = ?
    UNION ALL
    SELECT e.BusinessEntityID, e.ManagerID, p.FirstName, p.LastName, e.OrganizationNode, c.RecursionLevel + 1
    FROM HumanResources.Employee AS e
    INNER JOIN EMP_cte AS c ON e.BusinessEntityID = c.ManagerID
    INNER JOIN Person.Person AS p ON p.BusinessEntityID = e.BusinessEntityID
)
SELECT c.RecursionLevel, c.BusinessEntityID, c.FirstName, c.LastName, c.OrganizationNode,
    p.FirstName AS ManagerFirstName, p.LastName AS ManagerLastName
FROM EMP_cte AS c
INNER JOIN Person.Person AS p ON p.BusinessEntityID = c.ManagerID
ORDER BY c.RecursionLevel, c.BusinessEntityID`
