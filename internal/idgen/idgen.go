// Package idgen provides the snowflake identifier source shared by every
// repository.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/atelier/internal/config"
	"go.uber.org/fx"
)

// Generator issues unique primary keys. *snowflake.Node satisfies it.
type Generator interface {
	Generate() snowflake.ID
}

var Module = fx.Module("idgen",
	fx.Provide(NewNode),
	fx.Provide(func(node *snowflake.Node) Generator { return node }),
)

func NewNode(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.NodeID, err)
	}
	return node, nil
}
