// Package testutil provides test doubles for the kit's own tests and for
// applications testing against it. The centerpiece is IDP, a fake OpenID
// provider backed by httptest that publishes discovery and JWKS documents and
// mints signed tokens with controllable kid, algorithm, and claims.
//
// Minting lives here and nowhere else: the kit validates tokens, it never
// issues them.
package testutil
