package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSaveTags(t *testing.T) {
	base := make([]byte, minHeaderSize)

	cases := []struct {
		tag  string
		want SaveKind
	}{
		{"SRAM_V110", SaveSRAM32K},
		{"FLASH_V130", SaveFlash64K},
		{"FLASH512_V130", SaveFlash64K},
		{"FLASH1M_V102", SaveFlash128K},
		{"EEPROM_V120", SaveEEPROM512},
	}
	for _, tc := range cases {
		rom := append(append([]byte{}, base...), []byte(tc.tag)...)
		assert.Equal(t, tc.want, Detect(rom), tc.tag)
	}
}

func TestDetectEEPROMSizeByROMLength(t *testing.T) {
	small := append(make([]byte, minHeaderSize), []byte("EEPROM_V120")...)
	assert.Equal(t, SaveEEPROM512, Detect(small))

	large := append(make([]byte, 17*1024*1024), []byte("EEPROM_V120")...)
	assert.Equal(t, SaveEEPROM8K, Detect(large))
}

func TestLoadRejectsUndersizedROM(t *testing.T) {
	_, err := Load(make([]byte, 10))
	assert.ErrorIs(t, err, ErrRomTooSmall)
}

// TestFlashCommandSequence walks the AMD/SST unlock sequence for a
// byte-program command and confirms the target byte is ANDed (flash
// writes only clear bits) rather than overwritten.
func TestFlashCommandSequence(t *testing.T) {
	f := newFlash(64 * 1024)
	f.data[0x10] = 0xF0

	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
	f.Write8(0x5555, 0xA0) // program command
	f.Write8(0x10, 0x3C)

	assert.Equal(t, uint8(0x30), f.Read8(0x10)) // 0xF0 & 0x3C; an overwrite would read 0x3C
}

func TestFlashChipErase(t *testing.T) {
	f := newFlash(64 * 1024)
	f.data[0x10] = 0x00

	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
	f.Write8(0x5555, 0x80)
	f.Write8(0x5555, 0xAA)
	f.Write8(0x2AAA, 0x55)
	f.Write8(0x5555, 0x10)

	assert.Equal(t, uint8(0xFF), f.Read8(0x10))
}
