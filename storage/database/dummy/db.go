package dummydb

import (
	"sync"

	"github.com/oosplatform/oos/core/assistant"
	"github.com/oosplatform/oos/core/auth"
	"github.com/oosplatform/oos/core/donation"
	"github.com/oosplatform/oos/core/meeting"
	"github.com/oosplatform/oos/core/startup"
	"github.com/oosplatform/oos/core/verification"
	"github.com/oosplatform/oos/core/workspace"
)

type (
	DB struct {
		grants        *grantTable
		workspaces    *workspaceTable
		startups      *startupTable
		verifications *verificationTable
		donations     *donationTable
		meetings      *meetingTable
		contents      *contentTable
	}

	grantTable struct {
		sync.RWMutex
		table map[string]*auth.AdminGrant // keyed by user id
	}

	workspaceTable struct {
		sync.RWMutex
		table   map[string]*workspace.Workspace
		members map[string]*workspace.Member
		invites map[string]*workspace.Invite
	}

	startupTable struct {
		sync.RWMutex
		table         map[string]*startup.Startup
		comments      map[string]*startup.Comment
		subscriptions map[string]*startup.Subscription
		deletions     map[string]*startup.DeletionLog
	}

	verificationTable struct {
		sync.RWMutex
		documents map[string]*verification.Document
		banks     map[string]*verification.BankVerification
	}

	donationTable struct {
		sync.RWMutex
		table map[string]*donation.Donation
	}

	meetingTable struct {
		sync.RWMutex
		table map[string]*meeting.Meeting
	}

	contentTable struct {
		sync.RWMutex
		table map[string]*assistant.Content
	}
)

func Open() (*DB, error) {
	db := &DB{
		grants: &grantTable{table: make(map[string]*auth.AdminGrant)},
		workspaces: &workspaceTable{
			table:   make(map[string]*workspace.Workspace),
			members: make(map[string]*workspace.Member),
			invites: make(map[string]*workspace.Invite),
		},
		startups: &startupTable{
			table:         make(map[string]*startup.Startup),
			comments:      make(map[string]*startup.Comment),
			subscriptions: make(map[string]*startup.Subscription),
			deletions:     make(map[string]*startup.DeletionLog),
		},
		verifications: &verificationTable{
			documents: make(map[string]*verification.Document),
			banks:     make(map[string]*verification.BankVerification),
		},
		donations: &donationTable{table: make(map[string]*donation.Donation)},
		meetings:  &meetingTable{table: make(map[string]*meeting.Meeting)},
		contents:  &contentTable{table: make(map[string]*assistant.Content)},
	}
	return db, nil
}
