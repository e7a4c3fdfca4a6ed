package collection

import "modelmarket/core/types"

// The asset ledger is the ownership and URI record for minted instances. Ids
// are strictly increasing across the node's lifetime and never reused.

func (e *Engine) loadAsset(id uint64) (*Asset, error) {
	if e == nil || e.st == nil {
		return nil, errNilState
	}
	asset, ok, err := e.st.AssetGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || asset == nil {
		return nil, ErrUnknownAsset
	}
	return asset, nil
}

// TokenURI returns the URI snapshotted at mint time for the asset.
func (e *Engine) TokenURI(id uint64) (string, error) {
	asset, err := e.loadAsset(id)
	if err != nil {
		return "", err
	}
	return asset.URI, nil
}

// OwnerOf returns the current owner of the asset.
func (e *Engine) OwnerOf(id uint64) (types.Address, error) {
	asset, err := e.loadAsset(id)
	if err != nil {
		return types.ZeroAddress, err
	}
	return asset.Owner, nil
}

// Asset returns a copy of the full asset record.
func (e *Engine) Asset(id uint64) (*Asset, error) {
	asset, err := e.loadAsset(id)
	if err != nil {
		return nil, err
	}
	return asset.Clone(), nil
}

// ApproveAsset lets the current owner designate one account that may transfer
// the asset on their behalf. The zero address clears the approval.
func (e *Engine) ApproveAsset(caller types.Address, id uint64, spender types.Address) error {
	asset, err := e.loadAsset(id)
	if err != nil {
		return err
	}
	if caller != asset.Owner {
		return ErrUnauthorized
	}
	asset.Approved = spender
	return e.st.AssetPut(asset)
}

// TransferAsset moves ownership of a minted asset. Only the current owner or
// its approved operator may transfer; any approval is cleared on transfer.
func (e *Engine) TransferAsset(caller types.Address, id uint64, to types.Address) error {
	asset, err := e.loadAsset(id)
	if err != nil {
		return err
	}
	if caller != asset.Owner && caller != asset.Approved {
		return ErrUnauthorized
	}
	from := asset.Owner
	asset.Owner = to
	asset.Approved = types.ZeroAddress
	if err := e.st.AssetPut(asset); err != nil {
		return err
	}
	e.emit(assetTransferredEvent(id, from, to))
	return nil
}
