package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	stored, _, err := c.service.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if stored == nil {
		c.io.Println("No active session.")
		return nil
	}

	sess, err := c.unlock(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Logout(ctx, sess); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	c.io.Println("Your local session has been deleted.")

	return nil
}
