// ABOUTME: Declarative route table with an authentication guard for the terminal UI
// ABOUTME: Remembers the path a signed-out user asked for and returns it after login

package router

import (
	"strings"
	"sync"
)

// Route paths
const (
	Root      = "/"
	Login     = "/login"
	Register  = "/register"
	Forgot    = "/forgot"
	Dashboard = "/dashboard"
	Vehicles  = "/vehicles"
)

// Route is one entry of the table
type Route struct {
	Path      string
	Title     string
	Protected bool
}

// Table lists every known route
var Table = []Route{
	{Path: Root, Title: "Iniciar sesión"},
	{Path: Login, Title: "Iniciar sesión"},
	{Path: Register, Title: "Crear cuenta"},
	{Path: Forgot, Title: "Recuperar contraseña"},
	{Path: Dashboard, Title: "Dashboard", Protected: true},
	{Path: Vehicles, Title: "Vehículos", Protected: true},
}

// Lookup finds a route by path
func Lookup(path string) (Route, bool) {
	path = clean(path)
	for _, r := range Table {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Listener receives the resolved path after each navigation
type Listener func(path string)

// Router tracks the current route and applies the guard
type Router struct {
	mu         sync.Mutex
	current    string
	remembered string
	authed     func() bool
	listeners  []Listener
}

// New creates a router positioned at the sign-in route.
// authed reports whether a session is active; nil means never.
func New(authed func() bool) *Router {
	if authed == nil {
		authed = func() bool { return false }
	}
	return &Router{current: Login, authed: authed}
}

// OnChange registers a navigation listener
func (r *Router) OnChange(fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Current returns the current path
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate moves to path, redirecting to sign-in when the route is
// protected and no session is active. Unknown paths go to the root.
// Returns the path actually shown.
func (r *Router) Navigate(path string) string {
	path = clean(path)
	route, ok := Lookup(path)
	if !ok {
		path = Root
	}

	r.mu.Lock()
	if route.Protected && !r.authed() {
		r.remembered = path
		path = Login
	}
	r.current = path
	fns := append([]Listener(nil), r.listeners...)
	r.mu.Unlock()

	for _, fn := range fns {
		fn(path)
	}
	return path
}

// Replace navigates without remembering the target; used for forced sign-in
func (r *Router) Replace(path string) {
	r.Navigate(path)
}

// AfterLogin returns where to go once signed in and forgets the remembered path
func (r *Router) AfterLogin() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	dest := r.remembered
	r.remembered = ""
	if dest == "" {
		return Dashboard
	}
	return dest
}

func clean(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return Root
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
