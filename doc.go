// Package auth is the authentication and authorization core of the user
// management backend: it issues and verifies signed session tokens, derives a
// caller's identity and role set, and evaluates per resource access policy.
//
// Tokens:
//   - Codec signs compact HS256 tokens with the configured secret. TokenIssuer
//     mints access tokens {sub, id, roles, iat, exp} and refresh tokens
//     {sub, id, iat, exp}; TokenValidator checks signature and expiry against a
//     caller supplied instant and exposes both a tagged ValidationResult and the
//     plain IsValid predicate.
//   - Config is built once at start up and passed to the constructors. Nothing
//     in this package keeps global mutable state.
//
// Flows:
//   - Login: CredentialAuthenticator -> PrincipalResolver -> TokenIssuer.
//   - Refresh: RefreshOrchestrator -> TokenValidator -> user store -> TokenIssuer.
//     New access tokens always carry the roles the identity holds now.
//   - Authorized requests: TokenValidator -> PrincipalResolver -> AccessPolicy.
//
// Access policy:
//   - IsAccessUser allows self access or an authority bound to ROLE_ADMIN.
//   - IsAccessAddress allows the owner only, there is no admin override.
//   - Both read the stores on every call and deny on any error.
//
// Users, roles, addresses and password hashes live in collaborator stores,
// see the repository package for the bun backed implementation.
package auth
