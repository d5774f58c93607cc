// admintoken prints an HS256 bearer token accepted by the /api/admin guard.
// The secret and default lifetime come from AUTH_JWT_SECRET and
// ACCESS_TOKEN_TTL_MIN.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/iliyamo/postboard/internal/config"
	"github.com/iliyamo/postboard/internal/utils"
)

func main() {
	_ = godotenv.Load()
	subject := flag.String("sub", "operator", "token subject")
	role := flag.String("role", "ADMIN", "role claim")
	ttl := flag.Int("ttl", config.AccessTokenTTL(), "lifetime in minutes")
	flag.Parse()

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		log.Fatal("AUTH_JWT_SECRET is not set")
	}
	tok, err := utils.NewAccessToken(secret, *subject, *role, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(tok.Token)
	fmt.Fprintf(os.Stderr, "expires %s\n", tok.Exp.Format("2006-01-02 15:04:05 MST"))
}
