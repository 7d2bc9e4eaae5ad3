package main

import (
	"flag"
	"fmt"

	"github.com/manas284/empathy-ai/internal/config"
	"github.com/manas284/empathy-ai/internal/handler"
	"github.com/manas284/empathy-ai/internal/svc"

	"github.com/joho/godotenv"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"
)

var configFile = flag.String("f", "etc/empathyai-api.yaml", "the config file")

func main() {
	flag.Parse()

	// Optional .env for provider credentials; config values win when set.
	if err := godotenv.Load(); err != nil {
		logx.Infof("no .env file loaded: %v", err)
	}

	var c config.Config
	conf.MustLoad(*configFile, &c)

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	ctx := svc.NewServiceContext(c)
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
