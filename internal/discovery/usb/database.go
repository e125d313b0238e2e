// internal/discovery/usb/database.go
package usb

import (
	"github.com/google/gousb"
)

// DeviceDatabase contains known USB devices for identification
type DeviceDatabase struct {
	vendors map[gousb.ID]*VendorInfo
}

// VendorInfo contains vendor-specific information
type VendorInfo struct {
	Name     string
	products map[gousb.ID]*ProductInfo
}

// ProductInfo contains product-specific information
type ProductInfo struct {
	Model string
	// Serial is false for boot loaders and other modes the stimulator
	// firmware cannot be reached through
	Serial     bool
	Confidence float64
}

// NewDeviceDatabase creates and initializes the device database
func NewDeviceDatabase() *DeviceDatabase {
	db := &DeviceDatabase{
		vendors: make(map[gousb.ID]*VendorInfo),
	}
	db.initializeDatabase()
	return db
}

// initializeDatabase populates the known devices database
func (db *DeviceDatabase) initializeDatabase() {
	// PJRC Teensy boards enumerate under the Van Ooijen vendor id
	pjrc := &VendorInfo{
		Name:     "Van Ooijen Technische Informatica (PJRC Teensy)",
		products: make(map[gousb.ID]*ProductInfo),
	}
	pjrc.products[0x0483] = &ProductInfo{Model: "Teensy USB Serial", Serial: true, Confidence: 0.9}
	pjrc.products[0x0489] = &ProductInfo{Model: "Teensy Serial + MIDI", Serial: true, Confidence: 0.6}
	pjrc.products[0x048A] = &ProductInfo{Model: "Teensy Serial + MIDI + Audio", Serial: true, Confidence: 0.6}
	pjrc.products[0x048B] = &ProductInfo{Model: "Teensy Dual Serial", Serial: true, Confidence: 0.6}
	pjrc.products[0x048C] = &ProductInfo{Model: "Teensy Triple Serial", Serial: true, Confidence: 0.6}
	pjrc.products[0x0478] = &ProductInfo{Model: "Teensy HalfKay Bootloader", Serial: false, Confidence: 0.1}
	db.vendors[0x16C0] = pjrc
}

// IsKnownVendor reports whether the vendor appears in the database
func (db *DeviceDatabase) IsKnownVendor(vendorID gousb.ID) bool {
	_, ok := db.vendors[vendorID]
	return ok
}

// GetVendorInfo returns vendor information, or nil
func (db *DeviceDatabase) GetVendorInfo(vendorID gousb.ID) *VendorInfo {
	return db.vendors[vendorID]
}

// GetProductInfo returns product information, or nil
func (v *VendorInfo) GetProductInfo(productID gousb.ID) *ProductInfo {
	return v.products[productID]
}

// Lookup returns the product entry for a VID/PID pair, or nil
func (db *DeviceDatabase) Lookup(vendorID, productID gousb.ID) *ProductInfo {
	vendor := db.GetVendorInfo(vendorID)
	if vendor == nil {
		return nil
	}
	return vendor.GetProductInfo(productID)
}
