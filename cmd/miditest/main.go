package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"github.com/nyejames/midi-lx/chamsys"
	"github.com/nyejames/midi-lx/midi"
	"github.com/nyejames/midi-lx/organ"
	"github.com/nyejames/midi-lx/widgets"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor(os.Args[2:])
	case "stop":
		sendStop(os.Args[2:])
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println(widgets.RenderKeyHelp([]widgets.KeySection{{
		Title: "Commands:",
		Keys: []widgets.KeyBinding{
			{Key: "list", Desc: "List all MIDI ports"},
			{Key: "monitor [in]", Desc: "Print input messages and the desk command each becomes"},
			{Key: "stop <out> <id> <on|off>", Desc: "Send one organ stop message"},
			{Key: "poll", Desc: "Poll for device changes"},
		},
	}}))
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ports, err := midi.ListPorts()
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, name := range ports.InNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range ports.OutNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func monitor(args []string) {
	ports, err := midi.ListPorts()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	var in *midi.Input
	if len(args) > 0 {
		port, err := ports.FindIn(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		in = midi.NewInput(port, nil)
	} else {
		sel := midi.Selector{Excluded: midi.DefaultExcluded}
		name, ok := sel.Pick(ports.InNames())
		if !ok {
			fmt.Println("No single input to pick; name one: monitor <in>")
			return
		}
		port, _ := ports.FindIn(name)
		in = midi.NewInput(port, nil)
	}

	fmt.Printf("Monitoring %s. Ctrl+C to exit.\n", in.Name())

	msgs := make(chan []byte, 64)
	stop, err := in.Listen(func(msg []byte) {
		select {
		case msgs <- append([]byte(nil), msg...):
		default:
		}
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	var prev uint8
	notes := organ.DefaultNoteMap()
	for {
		select {
		case <-sig:
			return
		case msg := <-msgs:
			line := fmt.Sprintf("[%s] % X", time.Now().Format("15:04:05.000"), msg)
			if ev, ok := midi.Decode(msg); ok {
				line += fmt.Sprintf("  ch%d note=%d vel=%d", ev.Channel, ev.Note, ev.Velocity)
			}
			cmd, ok, err := chamsys.Translate(msg, &prev, nil)
			switch {
			case err != nil:
				line += fmt.Sprintf("  desk: %v", err)
			case ok:
				line += "  desk: " + cmd
			}
			if out, ok, _ := organ.Translate(msg, notes); ok {
				s, on, _ := organ.DecodeStop(out)
				line += fmt.Sprintf("  organ: %s on=%v", s, on)
			} else if s, on, ok := organ.DecodeStop(msg); ok {
				line += fmt.Sprintf("  organ reports: %s on=%v", s, on)
			}
			fmt.Println(line)
		}
	}
}

func sendStop(args []string) {
	if len(args) != 3 {
		fmt.Println("usage: stop <out> <id> <on|off>")
		return
	}
	stop, ok := organ.ParseStop(args[1])
	if !ok {
		fmt.Printf("Unknown stop %q\n", args[1])
		return
	}
	on := strings.EqualFold(args[2], "on")

	ports, err := midi.ListPorts()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	out, err := ports.FindOut(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	port, err := organ.OpenMIDIPort(out)
	if err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}
	defer port.Close()

	msg := organ.EncodeStop(stop, on)
	fmt.Printf("Sending: % X (%s on=%v)\n", msg, stop, on)
	if err := port.Send(msg); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Done!")
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a controller to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ports, err := midi.ListPorts()
		if err != nil {
			fmt.Printf("[%s] %v\n", time.Now().Format("15:04:05"), err)
			time.Sleep(2 * time.Second)
			continue
		}
		inNames, outNames := ports.InNames(), ports.OutNames()

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
