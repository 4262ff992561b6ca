// Package authctx propagates authentication claims through request contexts.
//
// It uses generics so transports can store the kit's TokenPayload while
// applications retrieve it (or their own wrapper type) without this package
// knowing the concrete fields.
//
//	ctx = authctx.Set(ctx, payload)                      // middleware
//	payload, ok := authctx.Get[*oidc.TokenPayload](ctx)  // handler
package authctx
