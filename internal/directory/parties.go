package directory

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Attribute is a looked-up value and whether it was present.
type Attribute struct {
	Value   string
	Present bool
}

// Parties holds the attributes of both sides of a transfer that the
// notification rules depend on.
type Parties struct {
	SrcDisplayName  Attribute
	DestDisplayName Attribute
	SrcFcmToken     Attribute
	DestFcmToken    Attribute
}

// ResolveParties issues the four lookups concurrently and waits for all of
// them. It cannot fail: every lookup that does not produce a value leaves its
// attribute absent.
func ResolveParties(ctx context.Context, dir Directory, srcAccountID, destAccountID string) Parties {
	var p Parties
	lookups := []struct {
		dst       *Attribute
		accountID string
		key       string
	}{
		{&p.SrcDisplayName, srcAccountID, KeyDisplayName},
		{&p.DestDisplayName, destAccountID, KeyDisplayName},
		{&p.SrcFcmToken, srcAccountID, KeyFcmToken},
		{&p.DestFcmToken, destAccountID, KeyFcmToken},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range lookups {
		l := l
		g.Go(func() error {
			value, ok := dir.GetAttribute(gctx, l.accountID, l.key)
			*l.dst = Attribute{Value: value, Present: ok}
			return nil
		})
	}
	_ = g.Wait()

	return p
}
