// Package auth holds the role/area access rules and credential helpers.
package auth

import (
	"skillgrid/internal/models"
)

// Area is a group of routes sharing one access rule.
type Area int

const (
	AreaPublicAuth        Area = iota // /login, /signup
	AreaFacultyPublicAuth             // /faculty/login, /faculty/signup
	AreaStudent                       // student pages
	AreaFaculty                       // faculty dashboard
)

const (
	PathStudentHome  = "/"
	PathStudentLogin = "/login"
	PathFacultyHome  = "/faculty"
	PathFacultyLogin = "/faculty/login"
)

type Identity struct {
	Authenticated bool
	Role          models.Role
}

// Decision is the outcome of an access check. RedirectTo is set when Allow is false.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(path string) Decision { return Decision{RedirectTo: path} }

// HomeFor is the landing page for a signed-in role.
func HomeFor(role models.Role) string {
	if role.IsStaff() {
		return PathFacultyHome
	}
	return PathStudentHome
}

// Authorize decides whether id may enter area, and where to send it otherwise.
func Authorize(id Identity, area Area) Decision {
	switch area {
	case AreaPublicAuth:
		if !id.Authenticated {
			return allow()
		}
		return redirect(HomeFor(id.Role))
	case AreaFacultyPublicAuth:
		if id.Authenticated && id.Role.IsStaff() {
			return redirect(PathFacultyHome)
		}
		return allow()
	case AreaStudent:
		if !id.Authenticated {
			return redirect(PathStudentLogin)
		}
		if id.Role.IsStaff() {
			return redirect(PathFacultyHome)
		}
		return allow()
	case AreaFaculty:
		if !id.Authenticated {
			return redirect(PathFacultyLogin)
		}
		if !id.Role.IsStaff() {
			return redirect(PathStudentHome)
		}
		return allow()
	}
	return redirect(PathStudentHome)
}
