package sigchan

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/paygate"
	"github.com/iov-one/paygate/coin"
	"github.com/iov-one/paygate/crypto"
	"github.com/iov-one/paygate/errors"
)

// Voucher is signed by the payer to authorize the payee to withdraw
// Amount. It is valid only for the funding session it was issued for and
// only if its sequence was not yet exceeded.
type Voucher struct {
	Payer     paygate.Address
	Payee     paygate.Address
	Amount    coin.Coin
	Sequence  int64
	SessionID int64
}

// VoucherPayload is the canonical content of a voucher signature. It is
// serialized using protobuf encoding.
type VoucherPayload struct {
	Engine     []byte `protobuf:"bytes,1,opt,name=engine,proto3" json:"engine,omitempty"`
	ChainID    string `protobuf:"bytes,2,opt,name=chain_id,json=chainId,proto3" json:"chain_id,omitempty"`
	Payer      []byte `protobuf:"bytes,3,opt,name=payer,proto3" json:"payer,omitempty"`
	Payee      []byte `protobuf:"bytes,4,opt,name=payee,proto3" json:"payee,omitempty"`
	Ticker     string `protobuf:"bytes,5,opt,name=ticker,proto3" json:"ticker,omitempty"`
	Whole      int64  `protobuf:"varint,6,opt,name=whole,proto3" json:"whole,omitempty"`
	Fractional int64  `protobuf:"varint,7,opt,name=fractional,proto3" json:"fractional,omitempty"`
	Sequence   int64  `protobuf:"varint,8,opt,name=sequence,proto3" json:"sequence,omitempty"`
	SessionID  int64  `protobuf:"varint,9,opt,name=session_id,json=sessionId,proto3" json:"session_id,omitempty"`
}

func (m *VoucherPayload) Reset()         { *m = VoucherPayload{} }
func (m *VoucherPayload) String() string { return proto.CompactTextString(m) }
func (*VoucherPayload) ProtoMessage()    {}

// SignBytes returns the bytes the payer signs to issue the voucher on the
// chain with given ID.
func (v Voucher) SignBytes(chainID string) ([]byte, error) {
	payload := VoucherPayload{
		Engine:     EngineAddress,
		ChainID:    chainID,
		Payer:      v.Payer,
		Payee:      v.Payee,
		Ticker:     v.Amount.Ticker,
		Whole:      v.Amount.Whole,
		Fractional: v.Amount.Fractional,
		Sequence:   v.Sequence,
		SessionID:  v.SessionID,
	}
	raw, err := proto.Marshal(&payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// SignVoucher returns the signature of the voucher made with given key.
// The payer of the voucher is set to the signer address.
func SignVoucher(key crypto.Signer, chainID string, v Voucher) ([]byte, error) {
	v.Payer = key.Address()
	raw, err := v.SignBytes(chainID)
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(raw)
	if err != nil {
		return nil, errors.Wrap(err, "sign voucher")
	}
	return sig, nil
}
