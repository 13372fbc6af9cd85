// Package models holds the resources served by the API.
// Every field carries json and msgpack tags so that both encodings use the same names.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Owner struct {
	ID         int64     `json:"id" msgpack:"id" db:"id"`
	Name       string    `json:"name" msgpack:"name" db:"name"`
	APIKey     uuid.UUID `json:"-" msgpack:"-" db:"api_key"`
	IPAddress  *string   `json:"ip_address" msgpack:"ip_address" db:"ip_address"`
	ModVersion int32     `json:"mod_version" msgpack:"mod_version" db:"mod_version"`
	CreatedAt  time.Time `json:"created_at" msgpack:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" msgpack:"updated_at" db:"updated_at"`
}

// PostedOwner is the body accepted when creating or updating an owner.
type PostedOwner struct {
	Name       string `json:"name" msgpack:"name"`
	ModVersion int32  `json:"mod_version" msgpack:"mod_version"`
}

type Shop struct {
	ID            int64     `json:"id" msgpack:"id" db:"id"`
	Name          string    `json:"name" msgpack:"name" db:"name"`
	OwnerID       int64     `json:"owner_id" msgpack:"owner_id" db:"owner_id"`
	Description   *string   `json:"description" msgpack:"description" db:"description"`
	IsNotSellBuy  bool      `json:"is_not_sell_buy" msgpack:"is_not_sell_buy" db:"is_not_sell_buy"`
	SellBuyListID int32     `json:"sell_buy_list_id" msgpack:"sell_buy_list_id" db:"sell_buy_list_id"`
	VendorID      int32     `json:"vendor_id" msgpack:"vendor_id" db:"vendor_id"`
	VendorGold    int32     `json:"vendor_gold" msgpack:"vendor_gold" db:"vendor_gold"`
	CreatedAt     time.Time `json:"created_at" msgpack:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" msgpack:"updated_at" db:"updated_at"`
}

// PostedShop is the body accepted when creating or updating a shop.
// OwnerID is only honoured on update, where it transfers the shop.
type PostedShop struct {
	Name          string  `json:"name" msgpack:"name"`
	OwnerID       *int64  `json:"owner_id,omitempty" msgpack:"owner_id,omitempty"`
	Description   *string `json:"description" msgpack:"description"`
	IsNotSellBuy  bool    `json:"is_not_sell_buy" msgpack:"is_not_sell_buy"`
	SellBuyListID int32   `json:"sell_buy_list_id" msgpack:"sell_buy_list_id"`
	VendorID      int32   `json:"vendor_id" msgpack:"vendor_id"`
	VendorGold    int32   `json:"vendor_gold" msgpack:"vendor_gold"`
}

type InteriorRef struct {
	BaseModName     string  `json:"base_mod_name" msgpack:"base_mod_name"`
	BaseLocalFormID int32   `json:"base_local_form_id" msgpack:"base_local_form_id"`
	RefModName      *string `json:"ref_mod_name" msgpack:"ref_mod_name"`
	RefLocalFormID  int32   `json:"ref_local_form_id" msgpack:"ref_local_form_id"`
	PositionX       float32 `json:"position_x" msgpack:"position_x"`
	PositionY       float32 `json:"position_y" msgpack:"position_y"`
	PositionZ       float32 `json:"position_z" msgpack:"position_z"`
	AngleX          float32 `json:"angle_x" msgpack:"angle_x"`
	AngleY          float32 `json:"angle_y" msgpack:"angle_y"`
	AngleZ          float32 `json:"angle_z" msgpack:"angle_z"`
	Scale           uint16  `json:"scale" msgpack:"scale"`
}

// InteriorRefs is stored as a JSON document in a single column.
type InteriorRefs []InteriorRef

func (r InteriorRefs) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return jsonValue(r)
}

func (r *InteriorRefs) Scan(src any) error {
	return jsonScan(src, r)
}

type InteriorRefList struct {
	ID        int64        `json:"id" msgpack:"id" db:"id"`
	ShopID    int64        `json:"shop_id" msgpack:"shop_id" db:"shop_id"`
	OwnerID   int64        `json:"owner_id" msgpack:"owner_id" db:"owner_id"`
	RefList   InteriorRefs `json:"ref_list" msgpack:"ref_list" db:"ref_list"`
	CreatedAt time.Time    `json:"created_at" msgpack:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" msgpack:"updated_at" db:"updated_at"`
}

type PostedInteriorRefList struct {
	ShopID  int64        `json:"shop_id" msgpack:"shop_id"`
	RefList InteriorRefs `json:"ref_list" msgpack:"ref_list"`
}

type Merchandise struct {
	ModName     string `json:"mod_name" msgpack:"mod_name"`
	LocalFormID int32  `json:"local_form_id" msgpack:"local_form_id"`
	Name        string `json:"name" msgpack:"name"`
	Quantity    int32  `json:"quantity" msgpack:"quantity"`
	FormType    int32  `json:"form_type" msgpack:"form_type"`
	IsFood      bool   `json:"is_food" msgpack:"is_food"`
	Price       int32  `json:"price" msgpack:"price"`
}

// FormList is stored as a JSON document in a single column.
type FormList []Merchandise

func (l FormList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return jsonValue(l)
}

func (l *FormList) Scan(src any) error {
	return jsonScan(src, l)
}

// Find returns the index of the merchandise with the given form, or -1.
func (l FormList) Find(modName string, localFormID int32) int {
	for i, m := range l {
		if m.ModName == modName && m.LocalFormID == localFormID {
			return i
		}
	}
	return -1
}

type MerchandiseList struct {
	ID        int64     `json:"id" msgpack:"id" db:"id"`
	ShopID    int64     `json:"shop_id" msgpack:"shop_id" db:"shop_id"`
	OwnerID   int64     `json:"owner_id" msgpack:"owner_id" db:"owner_id"`
	FormList  FormList  `json:"form_list" msgpack:"form_list" db:"form_list"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" msgpack:"updated_at" db:"updated_at"`
}

type PostedMerchandiseList struct {
	ShopID   int64    `json:"shop_id" msgpack:"shop_id"`
	FormList FormList `json:"form_list" msgpack:"form_list"`
}

type Transaction struct {
	ID          int64     `json:"id" msgpack:"id" db:"id"`
	ShopID      int64     `json:"shop_id" msgpack:"shop_id" db:"shop_id"`
	OwnerID     int64     `json:"owner_id" msgpack:"owner_id" db:"owner_id"`
	ModName     string    `json:"mod_name" msgpack:"mod_name" db:"mod_name"`
	LocalFormID int32     `json:"local_form_id" msgpack:"local_form_id" db:"local_form_id"`
	Name        string    `json:"name" msgpack:"name" db:"name"`
	FormType    int32     `json:"form_type" msgpack:"form_type" db:"form_type"`
	IsFood      bool      `json:"is_food" msgpack:"is_food" db:"is_food"`
	Price       int32     `json:"price" msgpack:"price" db:"price"`
	IsSell      bool      `json:"is_sell" msgpack:"is_sell" db:"is_sell"`
	Quantity    int32     `json:"quantity" msgpack:"quantity" db:"quantity"`
	Amount      int32     `json:"amount" msgpack:"amount" db:"amount"`
	CreatedAt   time.Time `json:"created_at" msgpack:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" msgpack:"updated_at" db:"updated_at"`
}

type PostedTransaction struct {
	ShopID      int64  `json:"shop_id" msgpack:"shop_id"`
	ModName     string `json:"mod_name" msgpack:"mod_name"`
	LocalFormID int32  `json:"local_form_id" msgpack:"local_form_id"`
	Name        string `json:"name" msgpack:"name"`
	FormType    int32  `json:"form_type" msgpack:"form_type"`
	IsFood      bool   `json:"is_food" msgpack:"is_food"`
	Price       int32  `json:"price" msgpack:"price"`
	IsSell      bool   `json:"is_sell" msgpack:"is_sell"`
	Quantity    int32  `json:"quantity" msgpack:"quantity"`
	Amount      int32  `json:"amount" msgpack:"amount"`
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

func (o PostedOwner) Validate() error {
	if o.Name == "" {
		return invalid("name is required")
	}
	if len(o.Name) > 255 {
		return invalid("name is longer than 255 characters")
	}
	return nil
}

func (s PostedShop) Validate() error {
	if s.Name == "" {
		return invalid("name is required")
	}
	if len(s.Name) > 255 {
		return invalid("name is longer than 255 characters")
	}
	return nil
}

func (l PostedInteriorRefList) Validate() error {
	for i, ref := range l.RefList {
		if ref.BaseModName == "" {
			return invalid("base_mod_name of ref %d is required", i)
		}
	}
	return nil
}

func (l PostedMerchandiseList) Validate() error {
	for _, m := range l.FormList {
		if m.Quantity < 0 {
			return invalid("quantity of %s is negative", m.Name)
		}
		if m.Price < 0 {
			return invalid("price of %s is negative", m.Name)
		}
	}
	return nil
}

func (t PostedTransaction) Validate() error {
	if t.ModName == "" {
		return invalid("mod_name is required")
	}
	if t.Quantity < 1 {
		return invalid("quantity must be positive")
	}
	if t.Amount < 0 {
		return invalid("amount is negative")
	}
	return nil
}

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(v), dst)
	case []byte:
		return json.Unmarshal(v, dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
}
