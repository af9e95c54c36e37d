package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/shopstack/shopbill/internal/clock"
	"github.com/shopstack/shopbill/internal/config"
	"github.com/shopstack/shopbill/internal/logger"
	"github.com/shopstack/shopbill/internal/migration"
	"github.com/shopstack/shopbill/internal/server"
	"github.com/shopstack/shopbill/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
