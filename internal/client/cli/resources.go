package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

func (c *Cli) runWhoami(ctx context.Context) error {
	sess, err := c.activeSession(ctx)
	if err != nil {
		return err
	}

	user, err := c.resources.Me(ctx, sess.Auth.AccessToken)
	if err != nil {
		return err
	}

	c.io.Printf("ID:    %s\n", user.ID)
	c.io.Printf("Name:  %s\n", user.Name)
	c.io.Printf("Email: %s\n", user.Email)
	c.io.Printf("Role:  %s\n", user.Role)
	if len(user.Permissions) == 0 {
		c.io.Println("Permissions: none")
	} else {
		c.io.Printf("Permissions: %s\n", strings.Join(user.Permissions, ", "))
	}

	return nil
}

func (c *Cli) runCall(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: authkeeper call METHOD PATH")
	}

	method := strings.ToUpper(args[0])
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("unsupported method %q", args[0])
	}

	sess, err := c.activeSession(ctx)
	if err != nil {
		return err
	}

	body, err := c.resources.Call(ctx, method, args[1], sess.Auth.AccessToken)
	if err != nil {
		return err
	}

	if _, err := c.io.Write(body); err != nil {
		return err
	}
	c.io.Println()

	return nil
}
