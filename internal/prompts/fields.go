package prompts

// Field names used as keys in form values.
const (
	FieldAge    = "age"
	FieldGender = "gender"
	FieldWeight = "weight"
	FieldHeight = "height"
	FieldGoal   = "goal"
	FieldLevel  = "level"
	FieldDays   = "days"

	FieldProduct  = "product"
	FieldAudience = "audience"
	FieldTone     = "tone"
	FieldPlatform = "platform"
	FieldKeywords = "keywords"

	FieldInstruction = "instruction"
)

// FieldKind hints how a field is collected. It is never enforced.
type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
)

// Field describes one form input of a template.
type Field struct {
	Name    string
	Label   string
	Kind    FieldKind
	Default string
}

var planFields = []Field{
	{Name: FieldAge, Label: "Age", Kind: KindNumber, Default: "30"},
	{Name: FieldGender, Label: "Gender", Default: "female"},
	{Name: FieldWeight, Label: "Weight (kg)", Kind: KindNumber, Default: "65"},
	{Name: FieldHeight, Label: "Height (cm)", Kind: KindNumber, Default: "170"},
	{Name: FieldGoal, Label: "Goal", Default: "build strength"},
	{Name: FieldLevel, Label: "Fitness level", Default: "beginner"},
	{Name: FieldDays, Label: "Days per week", Kind: KindNumber, Default: "3"},
}

var marketingFields = []Field{
	{Name: FieldProduct, Label: "Product"},
	{Name: FieldAudience, Label: "Target audience"},
	{Name: FieldTone, Label: "Tone", Default: "friendly"},
	{Name: FieldPlatform, Label: "Platform", Default: "Instagram"},
	{Name: FieldKeywords, Label: "Keywords"},
}

var uiFields = []Field{
	{Name: FieldInstruction, Label: "Instruction"},
}

// Fields returns the ordered form fields of a template, or nil for an unknown id.
func Fields(id TemplateID) []Field {
	var src []Field
	switch id {
	case Plan:
		src = planFields
	case Marketing:
		src = marketingFields
	case UI:
		src = uiFields
	default:
		return nil
	}
	out := make([]Field, len(src))
	copy(out, src)
	return out
}

// Defaults returns a fresh value map pre-filled with each field's default.
func Defaults(id TemplateID) map[string]string {
	values := make(map[string]string)
	for _, f := range Fields(id) {
		values[f.Name] = f.Default
	}
	return values
}

// HasField reports whether name is a field of the template.
func HasField(id TemplateID, name string) bool {
	for _, f := range Fields(id) {
		if f.Name == name {
			return true
		}
	}
	return false
}
