package driven

// Categoriser derives a category label from a file name.
type Categoriser interface {
	Categorise(fileName string) string
}
