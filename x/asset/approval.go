package asset

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
)

// Approval is a delegated, off band signed permission for the spender to
// pull up to amount from the owner wallet. It can be consumed only once,
// before the expiry time.
type Approval struct {
	Owner     paygate.Address  `json:"owner"`
	Spender   paygate.Address  `json:"spender"`
	Amount    coin.Coin        `json:"amount"`
	Expiry    paygate.UnixTime `json:"expiry"`
	Signature []byte           `json:"signature"`
}

func (a *Approval) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
	errs = errors.AppendField(errs, "Spender", a.Spender.Validate())
	if !a.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	} else {
		errs = errors.AppendField(errs, "Amount", a.Amount.Validate())
	}
	errs = errors.AppendField(errs, "Expiry", a.Expiry.Validate())
	if len(a.Signature) != crypto.SignatureSize {
		errs = errors.AppendField(errs, "Signature", errors.ErrInput)
	}
	return errs
}

// ApprovalPayload is the canonical content an owner signs to create an
// Approval. It is serialized using protobuf encoding.
type ApprovalPayload struct {
	ChainID    string `protobuf:"bytes,1,opt,name=chain_id,json=chainId,proto3" json:"chain_id,omitempty"`
	Ticker     string `protobuf:"bytes,2,opt,name=ticker,proto3" json:"ticker,omitempty"`
	Owner      []byte `protobuf:"bytes,3,opt,name=owner,proto3" json:"owner,omitempty"`
	Spender    []byte `protobuf:"bytes,4,opt,name=spender,proto3" json:"spender,omitempty"`
	Whole      int64  `protobuf:"varint,5,opt,name=whole,proto3" json:"whole,omitempty"`
	Fractional int64  `protobuf:"varint,6,opt,name=fractional,proto3" json:"fractional,omitempty"`
	Expiry     int64  `protobuf:"varint,7,opt,name=expiry,proto3" json:"expiry,omitempty"`
	Nonce      int64  `protobuf:"varint,8,opt,name=nonce,proto3" json:"nonce,omitempty"`
}

func (m *ApprovalPayload) Reset()         { *m = ApprovalPayload{} }
func (m *ApprovalPayload) String() string { return proto.CompactTextString(m) }
func (*ApprovalPayload) ProtoMessage()    {}

// ApprovalSignBytes returns the bytes an owner must sign to approve a
// transfer on the chain with given ID, using the nonce currently stored
// for the owner.
func ApprovalSignBytes(chainID string, a Approval, nonce int64) ([]byte, error) {
	payload := ApprovalPayload{
		ChainID:    chainID,
		Ticker:     a.Amount.Ticker,
		Owner:      a.Owner,
		Spender:    a.Spender,
		Whole:      a.Amount.Whole,
		Fractional: a.Amount.Fractional,
		Expiry:     int64(a.Expiry),
		Nonce:      nonce,
	}
	raw, err := proto.Marshal(&payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// SignApproval signs the approval with given key and sets the signature.
// The owner of the approval is set to the signer address.
func SignApproval(key crypto.Signer, chainID string, a *Approval, nonce int64) error {
	a.Owner = key.Address()
	raw, err := ApprovalSignBytes(chainID, *a, nonce)
	if err != nil {
		return err
	}
	sig, err := key.Sign(raw)
	if err != nil {
		return errors.Wrap(err, "sign approval")
	}
	a.Signature = sig
	return nil
}
