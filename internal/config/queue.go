package config

import "github.com/segal-ziv/smartbill/internal/types"

// QueueConfig selects the transport backing the job queues.
type QueueConfig struct {
	PubSub types.PubSubType `mapstructure:"pubsub" default:"memory" validate:"required"`
}
