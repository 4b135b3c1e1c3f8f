// Package discovery finds BLE bridges on the local network via mDNS.
//
// Appliances themselves are Bluetooth-only; a bridge pairs with one
// appliance and advertises a "_aquaclean-bridge._tcp" service whose TXT
// records carry the paired appliance's Bluetooth address ("mac") and
// serial number ("serial"). Discovery resolves those advertisements into
// Bridge records the transport layer can dial.
package discovery
