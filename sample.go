package ormsample

// Sample is one mapping library put through the fixed list of sample
// operations. Every operation prints its results through ctx and returns
// the first error it hits.
type Sample interface {
	// Name 输出标题里用的名字，例如 sqlx、gorm
	Name() string

	SimpleQuery(ctx *Context) error
	ParamQuery(ctx *Context) error
	// ManyToOne 每个产品带上它所属的子分类
	ManyToOne(ctx *Context) error
	// OneToMany 每个子分类带上它的全部产品
	OneToMany(ctx *Context) error
	DynamicQuery(ctx *Context) error
	StoredProcedure(ctx *Context) error
	// Insert 新建的 LocationID 放进 ctx.State，Update 和 Delete 会用到
	Insert(ctx *Context) error
	Update(ctx *Context) error
	Delete(ctx *Context) error
}

// StepFunc is one sample operation.
type StepFunc func(ctx *Context) error

type Step struct {
	// Name 用于日志、指标、链路里的标签
	Name   string
	Title  string
	Handle StepFunc
}

// Steps returns the operations of s in the order they always run in.
// Update and Delete depend on Insert having run first.
func Steps(s Sample) []Step {
	return []Step{
		{Name: "simple_query", Title: "Simple query", Handle: s.SimpleQuery},
		{Name: "param_query", Title: "Parameterized query", Handle: s.ParamQuery},
		{Name: "many_to_one", Title: "Many to one (N:1)", Handle: s.ManyToOne},
		{Name: "one_to_many", Title: "One to many (1:N)", Handle: s.OneToMany},
		{Name: "dynamic_query", Title: "Dynamic query", Handle: s.DynamicQuery},
		{Name: "stored_procedure", Title: "Stored procedure", Handle: s.StoredProcedure},
		{Name: "insert", Title: "Insert", Handle: s.Insert},
		{Name: "update", Title: "Update", Handle: s.Update},
		{Name: "delete", Title: "Delete", Handle: s.Delete},
	}
}
