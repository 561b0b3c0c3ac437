package utils

import (
	"context"

	"github.com/buddybudget/wealth_backend/appctx"
)

var (
	ContextKeyToken           = appctx.ContextKeyToken
	ContextKeyUserId          = appctx.ContextKeyUserId
	ContextKeyUsername        = appctx.ContextKeyUsername
	ContextKeyPrimaryCurrency = appctx.ContextKeyPrimaryCurrency
	ContextKeyCorrelationId   = appctx.ContextKeyCorrelationId
	ContextKeySkipOwnerScope  = appctx.ContextKeySkipOwnerScope
)

func GetUserIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserId)
}

func GetPrimaryCurrencyFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyPrimaryCurrency)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetUserIdInContext(ctx context.Context, userId string) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetPrimaryCurrencyInContext(ctx context.Context, currency string) context.Context {
	return appctx.Set(ctx, ContextKeyPrimaryCurrency, currency)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetSkipOwnerScopeInContext(ctx context.Context, skip bool) context.Context {
	return appctx.Set(ctx, ContextKeySkipOwnerScope, skip)
}
