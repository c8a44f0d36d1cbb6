package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/iudanet/authkeeper/internal/client/auth"
)

func (c *Cli) runRegister(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: authkeeper register [ROLE]")
	}
	var role string
	if len(args) == 1 {
		role = strings.ToUpper(args[0])
	}

	c.io.Println("=== Registration ===")
	c.io.Println()

	name, err := c.readInput("Name: ")
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}

	email, err := c.readInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.registerPassword()
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Registering user...")

	sess, err := c.service.Register(ctx, auth.RegisterParams{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("Email: %s\n", sess.Auth.Email)
	c.io.Println("Your session has been saved. Use the same password to unlock it.")

	return nil
}

// registerPassword при интерактивном вводе просит подтверждение
func (c *Cli) registerPassword() (string, error) {
	password, ok, err := c.presetPassword()
	if err != nil || ok {
		return password, err
	}

	password, err = c.getPassword("Password (min 8 chars): ")
	if err != nil {
		return "", err
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}
