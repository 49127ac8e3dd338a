package common

import (
	"context"
)

type ConfigItem interface {
	Key() ConfigKey
	Value() string
}

type ConfigStore interface {
	Get(key ConfigKey) ConfigItem
	Update(ctx context.Context)
}

type PageViewStore interface {
	StoreViews(ctx context.Context, records []*PageViewRecord) error
}
