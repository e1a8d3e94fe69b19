package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"highxofy/internal/auth"
	"highxofy/internal/config"
)

func runToken(env config.Env, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", "cli", "token subject (user name)")
	role := fs.String("role", string(auth.RoleViewer), "viewer, operator or admin")
	subjectID := fs.String("subject", "", "restrict the token to one site or meter; empty allows all")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if env.AuthJWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	normalized, err := auth.ParseRole(*role)
	if err != nil {
		return err
	}
	token, err := auth.IssueJWT([]byte(env.AuthJWTSecret), *user, normalized, *subjectID, *ttl, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, token)
	return nil
}
