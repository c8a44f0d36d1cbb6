package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/authkeeper/internal/client/api"
	"github.com/iudanet/authkeeper/internal/client/auth"
)

var errNotLoggedIn = errors.New("not authenticated. Please run 'authkeeper login' first")

// unlock открывает сохраненную сессию, спрашивая пароль только если она есть
func (c *Cli) unlock(ctx context.Context) (*auth.Session, error) {
	stored, _, err := c.service.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if stored == nil {
		return nil, errNotLoggedIn
	}

	password, err := c.getPassword(fmt.Sprintf("Password for %s: ", stored.Email))
	if err != nil {
		return nil, err
	}

	sess, err := c.service.Unlock(ctx, password)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return nil, errNotLoggedIn
	}
	return sess, err
}

// activeSession открывает сессию и обновляет истекший access токен
func (c *Cli) activeSession(ctx context.Context) (*auth.Session, error) {
	sess, err := c.unlock(ctx)
	if err != nil {
		return nil, err
	}

	if c.service.Expired(sess) {
		c.io.Println("Access token expired, refreshing...")
		if err := c.service.Refresh(ctx, sess); err != nil {
			if api.IsForbidden(err) {
				return nil, fmt.Errorf("session expired, please run 'authkeeper login': %w", err)
			}
			return nil, err
		}
	}

	return sess, nil
}

func (c *Cli) runRefresh(ctx context.Context) error {
	sess, err := c.unlock(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Refresh(ctx, sess); err != nil {
		if api.IsForbidden(err) {
			return fmt.Errorf("refresh rejected, please run 'authkeeper login': %w", err)
		}
		return err
	}

	c.io.Println("✓ Tokens refreshed")
	return nil
}
