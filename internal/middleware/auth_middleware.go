package middleware

import (
	"Orion_Shorts/pkg/token"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// 中间件工厂，传入令牌管理器；改成AuthMiddleware(tokens, role)就能做角色校验
// 流程：1、从http请求中取出"Authorization"字段 2、验证"Bearer [token]" 3、校验access令牌 4、把用户信息放入context
func AuthMiddleware(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 立刻调用c.Abort()，阻止后续的任何处理器（包括其他中间件和最终的handler）被执行
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请求未包含授权令牌"})
			return
		}

		// 通常Token的格式是 "Bearer [token]"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "授权令牌格式不正确"})
			return
		}

		// refresh令牌不能用来访问接口
		claims, err := tokens.Parse(parts[1], token.TypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的授权令牌"})
			return
		}

		// userID直接存uint64，handler里不用再从float64转换
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)

		c.Next()
	}
}
