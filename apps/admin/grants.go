package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/oosplatform/oos/core/auth"
)

// grantAdmin writes a badge grant directly, bypassing the self-service
// policy. Used to bootstrap the first operator.
func (cli *commandLine) grantAdmin(userID string) error {
	ctx := context.Background()
	grant, err := cli.grantRepo.CreateGrant(ctx, auth.AdminGrant{
		UserID:    userID,
		GrantedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == auth.ErrGrantExists {
			return fmt.Errorf("user %s already holds the admin badge", userID)
		}
		return err
	}
	logger.Printf("admin badge granted to %s (grant %s)", grant.UserID, grant.ID)
	return nil
}

func (cli *commandLine) revokeAdmin(userID string) error {
	ctx := context.Background()
	if err := cli.grantRepo.DeleteGrant(ctx, userID); err != nil {
		if errors.Cause(err) == auth.ErrNotFound {
			return fmt.Errorf("user %s holds no admin badge", userID)
		}
		return err
	}
	logger.Printf("admin badge revoked from %s", userID)
	return nil
}

func (cli *commandLine) listAdmins() error {
	grants, err := cli.grantRepo.QueryGrants(context.Background())
	if err != nil {
		return err
	}
	if len(grants) == 0 {
		fmt.Println("no admin badges granted")
		return nil
	}
	for _, g := range grants {
		by := g.GrantedBy
		if by == "" {
			by = "operator"
		}
		fmt.Printf("%s\tgranted by %s at %s\n", g.UserID, by, g.GrantedAt.Format(time.RFC3339))
	}
	return nil
}
