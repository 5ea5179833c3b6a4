package repository

// FieldSet es un conjunto explicito de campos excluidos de una lectura.
type FieldSet map[string]struct{}

// NewFieldSet construye un FieldSet a partir de nombres de campo.
func NewFieldSet(fields ...string) FieldSet {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Excludes indica si el campo debe omitirse del resultado.
func (f FieldSet) Excludes(field string) bool {
	if f == nil {
		return false
	}
	_, ok := f[field]
	return ok
}

// Campos de seccion excluidos en las lecturas publicas del catalogo:
// el contenido pago nunca sale por los endpoints sin compra.
var PublicCourseFields = NewFieldSet(
	"sections.video_url",
	"sections.links",
	"sections.suggestion",
	"sections.questions",
)
