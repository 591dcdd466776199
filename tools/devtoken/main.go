// Command devtoken mints access and refresh tokens for local development so
// the API can be exercised without going through the login flow.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/academia-hub/academia-backend/platform/go/auth"
)

func main() {
	secret := flag.String("secret", "", "access token signing secret (or JWT_SECRET env)")
	refreshSecret := flag.String("refresh-secret", "", "refresh token signing secret (or JWT_REFRESH_SECRET env)")
	userID := flag.String("user-id", "", "subject user id (defaults to a random UUID)")
	schoolID := flag.String("school-id", "", "school id claim (defaults to a random UUID)")
	role := flag.String("role", string(auth.RoleTeacher), "role claim (SUPER_ADMIN, SCHOOL_ADMIN, TEACHER, STUDENT, PARENT)")
	withRefresh := flag.Bool("refresh", false, "also print a refresh token")

	flag.Parse()

	accessSecret := pick(*secret, "JWT_SECRET")
	if accessSecret == "" {
		fatal("a signing secret is required: pass -secret or set JWT_SECRET")
	}
	refreshKey := pick(*refreshSecret, "JWT_REFRESH_SECRET")
	if refreshKey == "" {
		refreshKey = accessSecret
	}

	r := auth.Role(strings.ToUpper(strings.TrimSpace(*role)))
	if !r.Valid() {
		fatal("unknown role %q", *role)
	}

	uid, err := parseOrNew(*userID)
	if err != nil {
		fatal("invalid user id: %v", err)
	}
	sid, err := parseOrNew(*schoolID)
	if err != nil {
		fatal("invalid school id: %v", err)
	}

	tokens, err := auth.NewTokens([]byte(accessSecret), []byte(refreshKey))
	if err != nil {
		fatal("%v", err)
	}

	access, err := tokens.IssueAccess(uid, r, sid)
	if err != nil {
		fatal("issue access token: %v", err)
	}

	fmt.Printf("user-id:   %s\n", uid)
	fmt.Printf("school-id: %s\n", sid)
	fmt.Printf("access:    %s\n", access)

	if *withRefresh {
		refresh, err := tokens.IssueRefresh(uid, r, sid)
		if err != nil {
			fatal("issue refresh token: %v", err)
		}
		fmt.Printf("refresh:   %s\n", refresh)
	}
}

func pick(flagValue, envName string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(envName))
}

func parseOrNew(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(raw)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
