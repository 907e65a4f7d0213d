// 手动签发测试用 JWT 的脚本
//
// 登录流程在外部账号服务,本服务只校验令牌。本地联调或压测时
// 用这个脚本给任意用户签一个令牌。
//
// 用法: go run scripts/mint_token.go -user 1 -role admin
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/kmshistory/kmshistory-v2/internal/config"
	"github.com/kmshistory/kmshistory-v2/internal/model"
	"github.com/kmshistory/kmshistory-v2/internal/util"
)

func main() {
	userID := flag.Uint("user", 1, "用户 ID")
	email := flag.String("email", "dev@example.com", "邮箱")
	role := flag.String("role", string(model.Member), "角色 member/admin")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	user := &model.User{Email: *email, Role: model.UserRole(*role)}
	user.ID = *userID

	token, err := util.GenerateJWT(user, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	if err != nil {
		log.Fatalf("签发失败: %v", err)
	}
	fmt.Println(token)
	fmt.Println("expires:", time.Now().Add(cfg.JWT.ExpireTime).Format(util.TimeFormat))
}
