// Command goba is a headless driver for the emulator core in
// internal/gba: it loads a ROM (and optionally a BIOS image and prior
// save data), runs a fixed number of frames, and optionally dumps the
// last rendered frame as a PNG, continuing the teacher's habit of
// checking emulation progress against a saved screenshot.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/urfave/cli"

	"goba/internal/gba"
	"goba/rom"
)

const sampleRate = 32768

func main() {
	app := cli.NewApp()
	app.Name = "goba"
	app.Usage = "run a Game Boy Advance ROM headlessly"
	app.Description = "Loads a ROM and steps the emulator core for a fixed number of frames, optionally dumping the final frame and persisting save data."
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to the ROM image (required)"},
		cli.StringFlag{Name: "bios", Usage: "path to a GBA BIOS image (optional; BIOS calls are served by a built-in shim if omitted)"},
		cli.StringFlag{Name: "save", Usage: "path to persisted save data; loaded on start and written back on exit"},
		cli.IntFlag{Name: "frames", Usage: "number of frames to run", Value: 60},
		cli.BoolFlag{Name: "dump-frame", Usage: "write the final frame to last_frame.png"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		cli.ShowAppHelp(c)
		return fmt.Errorf("goba: -rom is required")
	}

	romImage, err := rom.Load(romPath)
	if err != nil {
		return err
	}

	sys := gba.New(sampleRate)

	if biosPath := c.String("bios"); biosPath != "" {
		biosData, err := os.ReadFile(biosPath)
		if err != nil {
			return fmt.Errorf("goba: reading bios: %w", err)
		}
		sys.LoadBIOS(biosData)
	}

	if err := sys.LoadROM(romImage.Data); err != nil {
		return fmt.Errorf("goba: loading rom: %w", err)
	}

	savePath := c.String("save")
	if savePath != "" {
		if saveData, err := os.ReadFile(savePath); err == nil {
			if err := sys.LoadSaveData(saveData); err != nil {
				return fmt.Errorf("goba: loading save data: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("goba: reading save data: %w", err)
		}
	}

	frames := c.Int("frames")
	var lastFrame *[240 * 160]uint16
	for i := 0; i < frames; i++ {
		frame, err := sys.StepFrame()
		if err != nil {
			return fmt.Errorf("goba: stepping frame %d: %w", i, err)
		}
		lastFrame = frame
	}

	if c.Bool("dump-frame") && lastFrame != nil {
		if err := dumpFrame(lastFrame, "last_frame.png"); err != nil {
			return fmt.Errorf("goba: dumping frame: %w", err)
		}
	}

	if savePath != "" {
		saveData, err := sys.SaveData()
		if err != nil {
			return fmt.Errorf("goba: reading save data: %w", err)
		}
		if err := os.WriteFile(savePath, saveData, 0644); err != nil {
			return fmt.Errorf("goba: writing save data: %w", err)
		}
	}

	return nil
}

// dumpFrame converts the PPU's RGB555 framebuffer to an RGBA PNG,
// mirroring the teacher's original first_frame.png diagnostic.
func dumpFrame(frame *[240 * 160]uint16, filename string) error {
	const width, height = 240, 160
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, rgb555ToColor(frame[y*width+x]))
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return err
	}
	log.Printf("wrote %s", filename)
	return nil
}

func rgb555ToColor(px uint16) color.RGBA {
	r := uint8(px&0x1F) << 3
	g := uint8((px>>5)&0x1F) << 3
	b := uint8((px>>10)&0x1F) << 3
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
