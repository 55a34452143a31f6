package coin

import (
	"sort"
	"strings"

	"github.com/iov-one/paygate/errors"
)

// Coins represents a set of coins of different currencies. Most operations
// require the normalized form: sorted by ticker, no duplicates and no zero
// values.
type Coins []*Coin

// CombineCoins creates a Coins containing all given coins in the normalized
// form.
func CombineCoins(cs ...Coin) (Coins, error) {
	var (
		coins Coins
		err   error
	)
	for _, c := range cs {
		coins, err = coins.Add(c)
		if err != nil {
			return nil, err
		}
	}
	if err := coins.Validate(); err != nil {
		return nil, err
	}
	return coins, nil
}

// Clone returns a copy that can be safely modified
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Add returns the set with the holdings of c's currency increased by c. A
// currency which sum is zero is removed from the set.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}
	res := cs.Clone()
	has, i := res.findCoin(c.ID())
	if has != nil {
		sum, err := has.Add(c)
		if err != nil {
			return nil, err
		}
		if sum.IsZero() {
			return append(res[:i], res[i+1:]...), nil
		}
		res[i] = &sum
		return res, nil
	}
	res = append(res, nil)
	copy(res[i+1:], res[i:])
	res[i] = &c
	return res, nil
}

// Subtract returns the set with the holdings decreased by c. The result may
// contain negative amounts.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	return cs.Add(c.Negative())
}

// Combine will create a new Coins adding all the coins of cs and o
// together.
func (cs Coins) Combine(o Coins) (Coins, error) {
	var err error
	res := cs.Clone()
	for _, c := range o {
		res, err = res.Add(*c)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Balance returns the amount held in given currency. A zero coin is
// returned if the currency is not present.
func (cs Coins) Balance(ticker string) Coin {
	has, _ := cs.findCoin(ticker)
	if has == nil {
		return Coin{Ticker: ticker}
	}
	return *has
}

// Contains returns true if there is at least that much coin in the set.
func (cs Coins) Contains(c Coin) bool {
	return cs.Balance(c.Ticker).IsGTE(c)
}

// findCoin returns a coin and index that have this currency code.
//
// If there was a match, then result is non-nil, and the index is where it
// was. If there was no match, then result is nil, and index is where it
// should be inserted.
func (cs Coins) findCoin(id string) (*Coin, int) {
	i := sort.Search(len(cs), func(i int) bool {
		return cs[i].Ticker >= id
	})
	if i < len(cs) && cs[i].Ticker == id {
		return cs[i], i
	}
	return nil, i
}

// IsEmpty returns if nothing is in the Coins
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// IsNonNegative returns true if all coins are positive,
// but also accepts an empty Coins
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsPositive() {
			return false
		}
	}
	return true
}

// Equals returns true if both Coins contain same coins
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate requires that all coins are in alphabetical
// order and that each coin is valid in it's own right
//
// Zero amounts should not be present
func (cs Coins) Validate() error {
	var err error
	last := ""
	for _, c := range cs {
		if c == nil {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "nil coin"))
			continue
		}
		err = errors.Append(err, errors.Wrap(c.Validate(), "coin"))
		if c.IsZero() {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "zero coins"))
		}
		if c.Ticker <= last {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "not sorted"))
		}
		last = c.Ticker
	}
	return err
}

// NormalizeCoins merges and orders a set of coins into the normalized form.
// If given set is normalized already it is returned as it is.
func NormalizeCoins(cs Coins) (Coins, error) {
	if isNormalized(cs) {
		if len(cs) == 0 {
			return nil, nil
		}
		return cs, nil
	}

	set := make(map[string]Coin)
	for _, c := range cs {
		if c == nil {
			continue
		}
		sum, err := set[c.Ticker].Add(*c)
		if err != nil {
			return nil, errors.Wrap(err, "cannot sum coins")
		}
		set[c.Ticker] = sum
	}
	coins := make(Coins, 0, len(set))
	for _, c := range set {
		if c.IsZero() {
			continue
		}
		cpy := c
		coins = append(coins, &cpy)
	}
	if len(coins) == 0 {
		return nil, nil
	}
	sort.Slice(coins, func(i, j int) bool {
		return strings.Compare(coins[i].Ticker, coins[j].Ticker) < 0
	})
	return coins, nil
}

func isNormalized(cs Coins) bool {
	var prev *Coin
	for _, c := range cs {
		if IsEmpty(c) {
			return false
		}
		if prev != nil && prev.Ticker >= c.Ticker {
			return false
		}
		prev = c
	}
	return true
}
