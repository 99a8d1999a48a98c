package groth16

import (
	"golang.org/x/sync/errgroup"
)

// BatchItem is one independent verification request.
type BatchItem struct {
	Proof        []byte
	PublicInputs []byte
	Attribute    AttributeType
}

// BatchVerify runs independent verifications concurrently. The key set is
// read-only, so the fan-out needs no synchronization beyond the result slice
// partition. The first malformed item aborts the batch with its error;
// results[i] is only meaningful when the returned error is nil.
func (ks *KeySet) BatchVerify(items []BatchItem) ([]bool, error) {
	results := make([]bool, len(items))
	var g errgroup.Group
	for i, item := range items {
		g.Go(func() error {
			ok, err := ks.Verify(item.Proof, item.PublicInputs, item.Attribute)
			if err != nil {
				return err
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
