package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	// для email и срока расшифровка токенов не нужна
	stored, active, err := c.service.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	if stored == nil {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'authkeeper login' to authenticate.")
		return nil
	}

	expiresAt := time.Unix(stored.ExpiresAt, 0)

	c.io.Printf("Email: %s\n", stored.Email)
	c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))

	if active {
		c.io.Println("Status: Authenticated")
		c.io.Printf("Time remaining: %s\n", time.Until(expiresAt).Round(time.Second))
	} else {
		c.io.Println("Status: Access token expired")
		c.io.Println("Run 'authkeeper refresh' or 'authkeeper login'.")
	}

	return nil
}
