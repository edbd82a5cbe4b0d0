package email

type Category string

const (
	CategoryProductive   Category = "Produtivo"
	CategoryUnproductive Category = "Improdutivo"
)

// Categories lists every category in candidate-label order.
var Categories = []Category{CategoryProductive, CategoryUnproductive}

func (c Category) IsValid() bool {
	switch c {
	case CategoryProductive, CategoryUnproductive:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
