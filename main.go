// @title Coach 后端 API
// @version 1.0
// @description 个人成长教练平台的后端服务器。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import "coach_backend/internal/cli"

func main() {
	cli.Execute()
}
