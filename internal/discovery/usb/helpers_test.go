package usb

import "github.com/google/gousb"

func descFor(vendor, product gousb.ID) *gousb.DeviceDesc {
	return &gousb.DeviceDesc{Vendor: vendor, Product: product}
}
