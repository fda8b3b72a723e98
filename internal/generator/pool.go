package generator

// DefaultTagPool is the built-in list of candidate tags.
var DefaultTagPool = []string{
	"AI", "Tech", "Innovation", "Developer", "Explore",
	"Coding", "Test", "Gallery", "Stack", "Diversition",
}

// Pool supplies the candidate tags for new images.
type Pool interface {
	Tags() []string
}

// StaticPool is a fixed tag pool.
type StaticPool []string

// Tags returns the pool contents.
func (p StaticPool) Tags() []string { return p }
