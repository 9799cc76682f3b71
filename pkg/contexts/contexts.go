package contexts

// Kind classifies a node in the administrative hierarchy.
type Kind string

const (
	KindRoot   Kind = "root"
	KindFolder Kind = "folder"
	KindItem   Kind = "item"
	KindUser   Kind = "user"
	KindAgent  Kind = "agent"
)

// Context is a node in the administrative tree. Every implementation exposes
// its parent so the resolver can walk the hierarchy without kind-specific
// branching; the root returns nil.
type Context interface {
	ID() string
	Kind() Kind
	Parent() Context
}

// Root is the top of the hierarchy.
type Root struct {
	Name string
}

func (r *Root) ID() string      { return r.Name }
func (r *Root) Kind() Kind      { return KindRoot }
func (r *Root) Parent() Context { return nil }

// Folder groups items and can nest under another folder or the root.
type Folder struct {
	Name  string
	Owner Context
}

func (f *Folder) ID() string      { return f.Name }
func (f *Folder) Kind() Kind      { return KindFolder }
func (f *Folder) Parent() Context { return f.Owner }

// Item is a runnable job or pipeline definition.
type Item struct {
	Name  string
	Owner Context
}

func (i *Item) ID() string      { return i.Name }
func (i *Item) Kind() Kind      { return KindItem }
func (i *Item) Parent() Context { return i.Owner }

// User is the personal context of a principal. Users are leaves; their parent
// is the root so user-private stores never inherit from folders.
type User struct {
	Username string
	Owner    Context
}

func (u *User) ID() string      { return u.Username }
func (u *User) Kind() Kind      { return KindUser }
func (u *User) Parent() Context { return u.Owner }

// Agent is a build node/computer context.
type Agent struct {
	Name  string
	Owner Context
}

func (a *Agent) ID() string      { return a.Name }
func (a *Agent) Kind() Kind      { return KindAgent }
func (a *Agent) Parent() Context { return a.Owner }

// Walk returns the chain from c up to the root, nearest first. A nil context
// yields an empty chain. Cycles are guarded by identity so a miswired tree
// cannot hang a resolution.
func Walk(c Context) []Context {
	var chain []Context
	seen := map[Context]bool{}
	for c != nil && !seen[c] {
		seen[c] = true
		chain = append(chain, c)
		c = c.Parent()
	}
	return chain
}

// RootOf returns the topmost ancestor of c, or nil for a nil context.
func RootOf(c Context) Context {
	chain := Walk(c)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}
