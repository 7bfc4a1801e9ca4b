// Package service holds the owner and account use cases, including the
// rule that an owner cannot be deleted while accounts reference it.
// Services are cheap and built per request around a repository.Wrapper.
package service
