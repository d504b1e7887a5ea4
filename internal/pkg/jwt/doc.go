// Package jwt issues and verifies HS512 service tokens and carries the
// authenticated principal through the request context.
//
// The same Claims value represents both token holders (admin, scheduler)
// and end users resolved from an API key, so usecases authorise against a
// single principal type.
package jwt
