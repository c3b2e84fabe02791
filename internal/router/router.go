// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"github.com/jeranaias/gradebook-tui/internal/model"
	"github.com/jeranaias/gradebook-tui/internal/session"
)

// =============================================================================
// ROUTES
// =============================================================================

// Route identifies a navigable view.
type Route int

const (
	// RouteLogin is the credential entry view. It is the only route an
	// anonymous session may reach, and the only one an authenticated
	// session may not.
	RouteLogin Route = iota

	// RouteTeacher is the teacher panel. Requires RoleTeacher.
	RouteTeacher

	// RouteStudent is the student panel. Requires RoleStudent.
	RouteStudent
)

// String returns a stable name for logging and tests.
func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteTeacher:
		return "teacher"
	case RouteStudent:
		return "student"
	default:
		return "invalid"
	}
}

// RequiredRole returns the role a route demands, or RoleUnknown for
// routes open to any authenticated session state.
func (r Route) RequiredRole() model.Role {
	switch r {
	case RouteTeacher:
		return model.RoleTeacher
	case RouteStudent:
		return model.RoleStudent
	default:
		return model.RoleUnknown
	}
}

// HomeRoute maps a role to its landing view. The switch is exhaustive
// over valid roles; an invalid role falls back to login, which is the
// only safe destination for a session that should not exist.
func HomeRoute(role model.Role) Route {
	switch role {
	case model.RoleTeacher:
		return RouteTeacher
	case model.RoleStudent:
		return RouteStudent
	default:
		return RouteLogin
	}
}

// =============================================================================
// DECISIONS
// =============================================================================

// Outcome is the kind of navigation decision.
type Outcome int

const (
	// Unresolved means hydration has not completed; show a loading
	// placeholder and decide nothing yet.
	Unresolved Outcome = iota

	// Authorized means the requested view may render.
	Authorized

	// Redirected means the navigation lands somewhere else.
	Redirected
)

// Decision is the result of resolving one navigation.
type Decision struct {
	Outcome Outcome

	// To is the redirect target; meaningful only when Outcome is
	// Redirected.
	To Route
}

// Resolve decides what a navigation to route produces given the current
// session state.
//
// Rules, in order:
//  1. Hydration pending: Unresolved.
//  2. Anonymous session: login renders, anything else redirects to login.
//  3. Authenticated session on the login route: redirect to role home.
//  4. Authenticated session, role mismatch: redirect to role home
//     (never a forbidden error).
//  5. Otherwise: Authorized.
func Resolve(hydrated bool, snap session.Snapshot, route Route) Decision {
	if !hydrated {
		return Decision{Outcome: Unresolved}
	}

	if !snap.Authenticated() {
		if route == RouteLogin {
			return Decision{Outcome: Authorized}
		}
		return Decision{Outcome: Redirected, To: RouteLogin}
	}

	home := HomeRoute(snap.User.Role)

	if route == RouteLogin {
		return Decision{Outcome: Redirected, To: home}
	}

	if required := route.RequiredRole(); required != model.RoleUnknown && snap.User.Role != required {
		return Decision{Outcome: Redirected, To: home}
	}

	return Decision{Outcome: Authorized}
}
