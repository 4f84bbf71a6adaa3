package protocol

import (
	"context"
	"encoding/json"
	"fmt"

	"creekbot/ledger"
	"creekbot/rpc"
)

// ObligationRef identifies an account's lending position: the shared
// obligation object and the owned key object that authorises changes to it.
type ObligationRef struct {
	ObligationID string
	Key          ledger.ObjectRef
}

// obligationKeyFields is the decoded content of an ObligationKey object.
type obligationKeyFields struct {
	Ownership struct {
		Fields struct {
			Of string `json:"of"`
		} `json:"fields"`
	} `json:"ownership"`
}

// EnsureObligation returns the account's obligation, creating one on first
// use. Creation waits for the key object to settle before re-querying; an
// obligation that still cannot be found afterwards is treated as a failed
// provision rather than retried.
func (s *Session) EnsureObligation(ctx context.Context) (*ObligationRef, error) {
	ref, err := s.findObligation(ctx)
	if err != nil {
		return nil, err
	}
	if ref != nil {
		return ref, nil
	}

	s.log.Info("no obligation found, creating one", "address", s.address.Short())
	b := ledger.NewBuilder(s.address)
	b.MoveCall(fmt.Sprintf("%s::%s::create_obligation", PackageID, obligationModule), nil,
		b.SharedObject(ObligationRegistryObject),
	)
	if _, err := s.execute(ctx, "createObligation", b.Intent()); err != nil {
		return nil, err
	}
	s.sleep(ctx, s.settleDelay)

	ref, err = s.findObligation(ctx)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, ErrObligationCreationFailed
	}
	s.log.Info("obligation created", "obligation", ref.ObligationID)
	return ref, nil
}

// findObligation looks for an owned ObligationKey and resolves the
// obligation it points at. Returns nil without error when the account holds
// no key yet.
func (s *Session) findObligation(ctx context.Context) (*ObligationRef, error) {
	owned, err := s.client.GetOwnedObjects(ctx, s.address.String(), ObligationKeyType)
	if err != nil {
		return nil, err
	}
	for _, res := range owned {
		if res.Data == nil {
			continue
		}
		ref, err := obligationFromKey(res.Data)
		if err != nil {
			s.log.Warn("skipping malformed obligation key", "object", res.Data.ObjectID, "error", err)
			continue
		}
		return ref, nil
	}
	return nil, nil
}

func obligationFromKey(key *rpc.ObjectData) (*ObligationRef, error) {
	if key.Content == nil {
		return nil, fmt.Errorf("key %s has no content", key.ObjectID)
	}
	var fields obligationKeyFields
	if err := json.Unmarshal(key.Content.Fields, &fields); err != nil {
		return nil, fmt.Errorf("decode key %s: %w", key.ObjectID, err)
	}
	if fields.Ownership.Fields.Of == "" {
		return nil, fmt.Errorf("key %s carries no obligation id", key.ObjectID)
	}
	return &ObligationRef{
		ObligationID: fields.Ownership.Fields.Of,
		Key: ledger.ObjectRef{
			ID:      key.ObjectID,
			Version: key.Version,
			Digest:  key.Digest,
		},
	}, nil
}
