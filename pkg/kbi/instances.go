package kbi

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/scrypster/kbbridge/pkg/types"
)

// InstancePayload is one entry of ListInstancePayloads.
type InstancePayload struct {
	Payload  any
	TypeName string
}

// instanceKey is the document store key for an instance.
func instanceKey(typeName, name string) string {
	return typeName + "__" + name
}

// AddInstance adds an instance of typeName to the knowledge base.
//
// A non-nil payload is first stored in the document store and its type is
// recorded for typeName, replacing any earlier entry. If the knowledge base
// update then fails the stored payload stays, and the error is a
// *PartialWriteError.
func (c *Client) AddInstance(ctx context.Context, typeName, name string, payload any) error {
	key := instanceKey(typeName, name)

	stored := false
	if !isNil(payload) {
		pt := PayloadTypeOf(payload)
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("kbi: failed to encode payload for %s: %w", key, err)
		}
		id, err := c.docs.InsertNamed(ctx, key, pt.Name, body)
		if err != nil {
			return fmt.Errorf("kbi: failed to store payload for %s: %w", key, err)
		}
		c.registry[typeName] = pt
		stored = true
		c.logger.Debug("stored instance payload",
			zap.String("key", key), zap.String("payload_type", pt.Name), zap.String("id", id))
	}

	err := c.svc.UpdateKnowledgeBase(ctx, types.OpAddKnowledge, types.NewInstanceItem(typeName, name))
	if err != nil {
		if stored {
			c.logger.Warn("instance payload stored but knowledge base update failed",
				zap.String("key", key), zap.Error(err))
			return &PartialWriteError{
				Op:        "add instance",
				Key:       key,
				Completed: "document store write",
				Failed:    "knowledge base update",
				Err:       err,
			}
		}
		return fmt.Errorf("kbi: failed to add instance %s: %w", key, err)
	}
	c.logger.Debug("added instance", zap.String("type", typeName), zap.String("name", name))
	return nil
}

// GetInstance loads the payload stored for an instance and returns it with
// the instance type it was found under.
//
// With a typeName the payload type is returnType, or the one registered for
// typeName; if neither exists the error matches ErrUnknownType. A missing
// document yields (nil, typeName, nil).
//
// With an empty typeName every domain type is probed in listing order and
// the first stored payload wins. Candidates are decoded with returnType, or
// their registered type; candidates with neither are skipped. No hit yields
// (nil, "", nil). This costs one document lookup per domain type.
func (c *Client) GetInstance(ctx context.Context, typeName, name string, returnType *PayloadType) (any, string, error) {
	if typeName == "" {
		return c.discoverInstance(ctx, name, returnType)
	}

	pt, ok := c.payloadTypeFor(typeName, returnType)
	if !ok {
		return nil, "", fmt.Errorf("kbi: %w %q: %w", ErrUnknownType, typeName, ErrNotFound)
	}
	payload, found, err := c.loadPayload(ctx, typeName, name, pt)
	if err != nil || !found {
		return nil, typeName, err
	}
	return payload, typeName, nil
}

func (c *Client) discoverInstance(ctx context.Context, name string, returnType *PayloadType) (any, string, error) {
	candidates, err := c.svc.GetDomainTypes(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("kbi: failed to list domain types: %w", err)
	}

	for _, typeName := range candidates {
		pt, ok := c.payloadTypeFor(typeName, returnType)
		if !ok {
			continue
		}
		payload, found, err := c.loadPayload(ctx, typeName, name, pt)
		if err != nil {
			return nil, "", err
		}
		if found {
			return payload, typeName, nil
		}
	}
	return nil, "", nil
}

func (c *Client) payloadTypeFor(typeName string, returnType *PayloadType) (PayloadType, bool) {
	if returnType != nil {
		return *returnType, true
	}
	pt, ok := c.registry[typeName]
	return pt, ok
}

func (c *Client) loadPayload(ctx context.Context, typeName, name string, pt PayloadType) (any, bool, error) {
	key := instanceKey(typeName, name)
	doc, err := c.docs.QueryNamed(ctx, key, pt.Name)
	if err != nil {
		return nil, false, fmt.Errorf("kbi: failed to load payload for %s: %w", key, err)
	}
	if doc == nil {
		return nil, false, nil
	}
	payload, err := pt.decode(doc.Body)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// RemoveInstance removes the instance from the knowledge base. Its stored
// payload is left in the document store; use PurgeInstance to drop both.
func (c *Client) RemoveInstance(ctx context.Context, typeName, name string) error {
	if err := c.svc.UpdateKnowledgeBase(ctx, types.OpRemoveKnowledge, types.NewInstanceItem(typeName, name)); err != nil {
		return fmt.Errorf("kbi: failed to remove instance %s: %w", instanceKey(typeName, name), err)
	}
	return nil
}

// PurgeInstance removes the instance from the knowledge base and then
// deletes its stored payloads.
func (c *Client) PurgeInstance(ctx context.Context, typeName, name string) error {
	if err := c.RemoveInstance(ctx, typeName, name); err != nil {
		return err
	}

	key := instanceKey(typeName, name)
	n, err := c.docs.DeleteNamed(ctx, key)
	if err != nil {
		return &PartialWriteError{
			Op:        "purge instance",
			Key:       key,
			Completed: "knowledge base removal",
			Failed:    "document store delete",
			Err:       err,
		}
	}
	c.logger.Debug("purged instance", zap.String("key", key), zap.Int("documents", n))
	return nil
}

// ListInstances returns the instance names of typeFilter, or of every type
// when typeFilter is empty.
func (c *Client) ListInstances(ctx context.Context, typeFilter string) ([]string, error) {
	names, err := c.svc.GetCurrentInstances(ctx, typeFilter)
	if err != nil {
		return nil, fmt.Errorf("kbi: failed to list instances: %w", err)
	}
	return names, nil
}

// ListInstancePayloads lists instances like ListInstances and loads each
// payload with GetInstance, one lookup per name.
func (c *Client) ListInstancePayloads(ctx context.Context, typeFilter string, payloadType *PayloadType) (map[string]InstancePayload, error) {
	names, err := c.ListInstances(ctx, typeFilter)
	if err != nil {
		return nil, err
	}

	out := make(map[string]InstancePayload, len(names))
	for _, name := range names {
		payload, typeName, err := c.GetInstance(ctx, typeFilter, name, payloadType)
		if err != nil {
			return nil, err
		}
		out[name] = InstancePayload{Payload: payload, TypeName: typeName}
	}
	return out, nil
}

// isNil reports whether v is nil or a nil pointer, map or slice.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
