package reveal

// Props are the external inputs of a comparison. They stay fixed for the
// lifetime of a mounted slider; new props mean a new mount.
type Props struct {
	BeforeURL string
	AfterURL  string
	Title     string
}

// BeforeAlt is the accessible label of the before image.
func (p Props) BeforeAlt() string {
	return p.Title + " - Before"
}

// AfterAlt is the accessible label of the after image.
func (p Props) AfterAlt() string {
	return p.Title + " - After"
}
