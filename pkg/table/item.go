package table

// TemplateRef names a template owned by the rendering layer. The table package
// never inspects or executes it; renderers resolve it against their template
// engine. The zero value means the cell is rendered as plain text.
type TemplateRef string

// IsZero reports whether the reference is unset.
func (r TemplateRef) IsZero() bool {
	return r == ""
}

// Item holds the content of one table cell.
type Item struct {
	// Data is the raw payload displayed in the cell.
	Data any `json:"data" yaml:"data"`
	// Template optionally points renderers at a custom view for Data. When
	// unset, Data is displayed as plain text.
	Template TemplateRef `json:"template,omitempty" yaml:"template,omitempty"`
}

// ItemInit carries the optional inputs accepted by NewItem.
type ItemInit struct {
	Data     any
	Template TemplateRef
}

// NewItem builds an Item from init. A nil init or a nil Data payload defaults
// Data to the empty string so cells are never left empty.
func NewItem(init *ItemInit) Item {
	item := Item{Data: ""}
	if init == nil {
		return item
	}
	if init.Data != nil {
		item.Data = init.Data
	}
	item.Template = init.Template
	return item
}

// Typed wraps a payload of a known type until it is placed in a Model.
type Typed[T any] struct {
	Data     T
	Template TemplateRef
}

// Item converts the typed holder into the untyped cell stored in models.
func (t Typed[T]) Item() Item {
	return NewItem(&ItemInit{Data: t.Data, Template: t.Template})
}
