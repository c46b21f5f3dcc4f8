package cache

import (
	"context"
	"time"
)

// Ensure NullCache implements Manager
var _ Manager = NullCache{}

// NullCache is a Manager that stores nothing
type NullCache struct{}

func (NullCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (NullCache) Set(context.Context, string, any, time.Duration) error { return nil }

func (NullCache) IsSet(context.Context, string) (bool, error) { return false, nil }

func (NullCache) Remove(context.Context, string) error { return nil }

func (NullCache) RemoveByPattern(context.Context, string) error { return nil }

func (NullCache) Clear(context.Context) error { return nil }

func (NullCache) Close() error { return nil }
