// Package portal is the HTTP face of the hostel management portal: the
// login and password-reset screens, the logout route, and the role-keyed
// dashboard subtrees.
//
// # Flow handles
//
// Every multi-step flow renders its follow-up form with the attempt ID the
// engine issued as a hidden field. Re-submitting a form from a superseded
// page posts a dead attempt ID and fails closed; the portal never keeps
// flow state of its own.
//
// # Role dispatch
//
// /dashboard resolves the restored session's role to that role's subtree
// and nothing else. The switch over roles is exhaustive; a session carrying
// a role the portal does not know renders a terminal error page rather
// than any fallback view.
//
// # Architecture boundaries
//
//   - All auth decisions are delegated to hmsauth.Engine and the session
//     guards in the middleware package.
//   - Handlers never call the upstream API directly.
//   - Templates receive plain view-model structs, never engine types.
package portal
