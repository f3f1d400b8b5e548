package organ

import (
	"fmt"
	"strconv"
	"strings"
)

// Stop is a control point on the organ, identified by its internal stop
// number as listed in the organ's MIDI documentation. Numbers 2, 99 and 100
// are not assigned.
type Stop uint8

const (
	PedalSwellToPedal            Stop = 0
	PedalSoloToPedal             Stop = 1
	SoloContraViola16            Stop = 3
	SoloVioleDOrchestre8         Stop = 4
	SoloVioleCeleste8            Stop = 5
	SoloVioleSourdine8           Stop = 6
	SoloVioleOctaviante4         Stop = 7
	SoloCornetDeViolesIII        Stop = 8
	SoloTuba8                    Stop = 9
	SoloTubaClarion4             Stop = 10
	SoloSpareAStopLine           Stop = 11
	SoloSpareBStopLine           Stop = 12
	SoloTremulant                Stop = 13
	SwellTremulant               Stop = 14
	ChoirTremulant               Stop = 15
	ChoirSubOctave               Stop = 16
	ChoirUnisonOff               Stop = 17
	ChoirOctave                  Stop = 18
	SoloHarmonicFlute8           Stop = 19
	SoloConcertFlute4            Stop = 20
	SoloHarmonicPiccolo2         Stop = 21
	SoloOrchestralOboe8          Stop = 22
	SoloCorAnglais8              Stop = 23
	SoloFrenchHorn8              Stop = 24
	SoloOrchestralTrumpet8       Stop = 25
	SwellSoloToSwell             Stop = 26
	SoloSubOctave                Stop = 27
	SoloUnisonOff                Stop = 28
	SoloOctave                   Stop = 29
	SwellQuintaten16             Stop = 30
	SwellOpenDiapason8           Stop = 31
	SwellViolinDiapason8         Stop = 32
	SwellLieblichGedackt8        Stop = 33
	SwellEchoGamba8              Stop = 34
	SwellVoixCelestes8           Stop = 35
	SwellPrincipal4              Stop = 36
	SwellLieblichFlute4          Stop = 37
	SwellTwelfth                 Stop = 38
	SwellFifteenth2              Stop = 39
	SwellMixtureV                Stop = 40
	SwellContraOboe16            Stop = 41
	SwellOboe8                   Stop = 42
	SwellDoubleTrumpet16         Stop = 43
	SwellTrumpet8                Stop = 44
	SwellClarion4                Stop = 45
	SwellSpareAStopLine          Stop = 46
	SwellSpareBStopLine          Stop = 47
	GreatSoloToGreat             Stop = 48
	GreatSwellToGreat            Stop = 49
	GreatChoirToGreat            Stop = 50
	GreatDoubleGeigen16          Stop = 51
	GreatOpenDiapasonI8          Stop = 52
	GreatOpenDiapasonII8         Stop = 53
	GreatOpenDiapasonIII8        Stop = 54
	GreatGeigen8                 Stop = 55
	GreatHohlFlute8              Stop = 56
	GreatQuint                   Stop = 57
	GreatOctave4                 Stop = 58
	GreatPrincipal4              Stop = 59
	GreatWaldFlute4              Stop = 60
	GreatOctaveQuint             Stop = 61
	GreatSuperOctave2            Stop = 62
	GreatMixtureIII              Stop = 63
	GreatMixtureV                Stop = 64
	GreatSpareAStopLine          Stop = 65
	GreatSpareBStopLine          Stop = 66
	GreatContraTromba16          Stop = 67
	GreatTromba8                 Stop = 68
	GreatOctaveTromba4           Stop = 69
	SwellSubOctave               Stop = 70
	SwellUnisonOff               Stop = 71
	SwellOctave                  Stop = 72
	ChoirSoloToChoir             Stop = 73
	ChoirSwellToChoir            Stop = 74
	ChoirOpenDiapason8           Stop = 75
	ChoirStoppedDiapason8        Stop = 76
	ChoirPrincipal4              Stop = 77
	ChoirStoppedFlute4           Stop = 78
	ChoirNazard                  Stop = 79
	ChoirSuperOctave2            Stop = 80
	ChoirTierce                  Stop = 81
	ChoirLarigot                 Stop = 82
	ChoirTwentySecond1           Stop = 83
	ChoirMixtureIII              Stop = 84
	ChoirSpareUnenclosedStopLine Stop = 85
	ChoirDoubleDulciana16        Stop = 86
	ChoirClaribelFlute8          Stop = 87
	ChoirSalicional8             Stop = 88
	ChoirVoxAngelica8            Stop = 89
	ChoirDulciana8               Stop = 90
	ChoirDulcet4                 Stop = 91
	ChoirClarinet8               Stop = 92
	ChoirCornopean8              Stop = 93
	ChoirSpareEnclosedStopLine   Stop = 94
	ChoirContraTromba16          Stop = 95
	ChoirTromba8                 Stop = 96
	ChoirOctaveTromba4           Stop = 97
	ChoirTuba8                   Stop = 98
	PedalGreatToPedal            Stop = 101
	PedalChoirToPedal            Stop = 102
	PedalDoubleOpenWood32        Stop = 103
	PedalOpenMetal16             Stop = 104
	PedalOpenWoodI16             Stop = 105
	PedalOpenWoodII16            Stop = 106
	PedalViolone16               Stop = 107
	PedalBourdon16               Stop = 108
	PedalQuintaten16             Stop = 109
	PedalViola16                 Stop = 110
	PedalDulciana16              Stop = 111
	PedalOctaveMetal8            Stop = 112
	PedalPrincipal8              Stop = 113
	PedalOctaveWood8             Stop = 114
	PedalFlute8                  Stop = 115
	PedalOctaveQuint             Stop = 116
	PedalSuperOctave4            Stop = 117
	PedalFifteenth4              Stop = 118
	PedalOctaveFlute4            Stop = 119
	PedalMixtureIV               Stop = 120
	PedalDoubleOphicleide32      Stop = 121
	PedalOphicleide16            Stop = 122
	PedalTrombone16              Stop = 123
	PedalFagotto16               Stop = 124
	PedalPosaune8                Stop = 125
	PedalOctavePosaune4          Stop = 126
)

var stopNames = map[Stop]string{
	PedalSwellToPedal:            "Pedal Swell to Pedal",
	PedalSoloToPedal:             "Pedal Solo to Pedal",
	SoloContraViola16:            "Solo Contra Viola 16",
	SoloVioleDOrchestre8:         "Solo Viole d'Orchestre 8",
	SoloVioleCeleste8:            "Solo Viole Celeste 8",
	SoloVioleSourdine8:           "Solo Viole Sourdine 8",
	SoloVioleOctaviante4:         "Solo Viole Octaviante 4",
	SoloCornetDeViolesIII:        "Solo Cornet de Violes III",
	SoloTuba8:                    "Solo Tuba 8",
	SoloTubaClarion4:             "Solo Tuba Clarion 4",
	SoloSpareAStopLine:           "Solo Spare A Stop Line",
	SoloSpareBStopLine:           "Solo Spare B Stop Line",
	SoloTremulant:                "Solo Tremulant",
	SwellTremulant:               "Swell Tremulant",
	ChoirTremulant:               "Choir Tremulant",
	ChoirSubOctave:               "Choir Sub Octave",
	ChoirUnisonOff:               "Choir Unison Off",
	ChoirOctave:                  "Choir Octave",
	SoloHarmonicFlute8:           "Solo Harmonic Flute 8",
	SoloConcertFlute4:            "Solo Concert Flute 4",
	SoloHarmonicPiccolo2:         "Solo Harmonic Piccolo 2",
	SoloOrchestralOboe8:          "Solo Orchestral Oboe 8",
	SoloCorAnglais8:              "Solo Cor Anglais 8",
	SoloFrenchHorn8:              "Solo French Horn 8",
	SoloOrchestralTrumpet8:       "Solo Orchestral Trumpet 8",
	SwellSoloToSwell:             "Swell Solo to Swell",
	SoloSubOctave:                "Solo Sub Octave",
	SoloUnisonOff:                "Solo Unison Off",
	SoloOctave:                   "Solo Octave",
	SwellQuintaten16:             "Swell Quintaten 16",
	SwellOpenDiapason8:           "Swell Open Diapason 8",
	SwellViolinDiapason8:         "Swell Violin Diapason 8",
	SwellLieblichGedackt8:        "Swell Lieblich Gedackt 8",
	SwellEchoGamba8:              "Swell Echo Gamba 8",
	SwellVoixCelestes8:           "Swell Voix Celestes 8",
	SwellPrincipal4:              "Swell Principal 4",
	SwellLieblichFlute4:          "Swell Lieblich Flute 4",
	SwellTwelfth:                 "Swell Twelfth 2 2/3",
	SwellFifteenth2:              "Swell Fifteenth 2",
	SwellMixtureV:                "Swell Mixture V",
	SwellContraOboe16:            "Swell Contra Oboe 16",
	SwellOboe8:                   "Swell Oboe 8",
	SwellDoubleTrumpet16:         "Swell Double Trumpet 16",
	SwellTrumpet8:                "Swell Trumpet 8",
	SwellClarion4:                "Swell Clarion 4",
	SwellSpareAStopLine:          "Swell Spare A Stop Line",
	SwellSpareBStopLine:          "Swell Spare B Stop Line",
	GreatSoloToGreat:             "Great Solo to Great",
	GreatSwellToGreat:            "Great Swell to Great",
	GreatChoirToGreat:            "Great Choir to Great",
	GreatDoubleGeigen16:          "Great Double Geigen 16",
	GreatOpenDiapasonI8:          "Great Open Diapason I 8",
	GreatOpenDiapasonII8:         "Great Open Diapason II 8",
	GreatOpenDiapasonIII8:        "Great Open Diapason III 8",
	GreatGeigen8:                 "Great Geigen 8",
	GreatHohlFlute8:              "Great Hohl Flute 8",
	GreatQuint:                   "Great Quint 5 1/3",
	GreatOctave4:                 "Great Octave 4",
	GreatPrincipal4:              "Great Principal 4",
	GreatWaldFlute4:              "Great Wald Flute 4",
	GreatOctaveQuint:             "Great Octave Quint 2 2/3",
	GreatSuperOctave2:            "Great Super Octave 2",
	GreatMixtureIII:              "Great Mixture III",
	GreatMixtureV:                "Great Mixture V",
	GreatSpareAStopLine:          "Great Spare A Stop Line",
	GreatSpareBStopLine:          "Great Spare B Stop Line",
	GreatContraTromba16:          "Great Contra Tromba 16",
	GreatTromba8:                 "Great Tromba 8",
	GreatOctaveTromba4:           "Great Octave Tromba 4",
	SwellSubOctave:               "Swell Sub Octave",
	SwellUnisonOff:               "Swell Unison Off",
	SwellOctave:                  "Swell Octave",
	ChoirSoloToChoir:             "Choir Solo to Choir",
	ChoirSwellToChoir:            "Choir Swell to Choir",
	ChoirOpenDiapason8:           "Choir Open Diapason 8",
	ChoirStoppedDiapason8:        "Choir Stopped Diapason 8",
	ChoirPrincipal4:              "Choir Principal 4",
	ChoirStoppedFlute4:           "Choir Stopped Flute 4",
	ChoirNazard:                  "Choir Nazard 2 2/3",
	ChoirSuperOctave2:            "Choir Super Octave 2",
	ChoirTierce:                  "Choir Tierce 1 3/5",
	ChoirLarigot:                 "Choir Larigot 1 1/3",
	ChoirTwentySecond1:           "Choir Twenty-Second 1",
	ChoirMixtureIII:              "Choir Mixture III",
	ChoirSpareUnenclosedStopLine: "Choir Spare Unenclosed Stop Line",
	ChoirDoubleDulciana16:        "Choir Double Dulciana 16",
	ChoirClaribelFlute8:          "Choir Claribel Flute 8",
	ChoirSalicional8:             "Choir Salicional 8",
	ChoirVoxAngelica8:            "Choir Vox Angelica 8",
	ChoirDulciana8:               "Choir Dulciana 8",
	ChoirDulcet4:                 "Choir Dulcet 4",
	ChoirClarinet8:               "Choir Clarinet 8",
	ChoirCornopean8:              "Choir Cornopean 8",
	ChoirSpareEnclosedStopLine:   "Choir Spare Enclosed Stop Line",
	ChoirContraTromba16:          "Choir Contra Tromba 16",
	ChoirTromba8:                 "Choir Tromba 8",
	ChoirOctaveTromba4:           "Choir Octave Tromba 4",
	ChoirTuba8:                   "Choir Tuba 8",
	PedalGreatToPedal:            "Pedal Great to Pedal",
	PedalChoirToPedal:            "Pedal Choir to Pedal",
	PedalDoubleOpenWood32:        "Pedal Double Open Wood 32",
	PedalOpenMetal16:             "Pedal Open Metal 16",
	PedalOpenWoodI16:             "Pedal Open Wood I 16",
	PedalOpenWoodII16:            "Pedal Open Wood II 16",
	PedalViolone16:               "Pedal Violone 16",
	PedalBourdon16:               "Pedal Bourdon 16",
	PedalQuintaten16:             "Pedal Quintaten 16",
	PedalViola16:                 "Pedal Viola 16",
	PedalDulciana16:              "Pedal Dulciana 16",
	PedalOctaveMetal8:            "Pedal Octave Metal 8",
	PedalPrincipal8:              "Pedal Principal 8",
	PedalOctaveWood8:             "Pedal Octave Wood 8",
	PedalFlute8:                  "Pedal Flute 8",
	PedalOctaveQuint:             "Pedal Octave Quint 5 1/3",
	PedalSuperOctave4:            "Pedal Super Octave 4",
	PedalFifteenth4:              "Pedal Fifteenth 4",
	PedalOctaveFlute4:            "Pedal Octave Flute 4",
	PedalMixtureIV:               "Pedal Mixture IV",
	PedalDoubleOphicleide32:      "Pedal Double Ophicleide 32",
	PedalOphicleide16:            "Pedal Ophicleide 16",
	PedalTrombone16:              "Pedal Trombone 16",
	PedalFagotto16:               "Pedal Fagotto 16",
	PedalPosaune8:                "Pedal Posaune 8",
	PedalOctavePosaune4:          "Pedal Octave Posaune 4",
}

// stopOrder lists every defined stop in ascending id order.
var stopOrder []Stop

var stopsByName map[string]Stop

func init() {
	stopsByName = make(map[string]Stop, len(stopNames))
	for id := 0; id < 256; id++ {
		s := Stop(id)
		if name, ok := stopNames[s]; ok {
			stopOrder = append(stopOrder, s)
			stopsByName[strings.ToLower(name)] = s
		}
	}
}

// StopByID looks up a stop by its internal number.
func StopByID(id uint8) (Stop, bool) {
	s := Stop(id)
	return s, s.Valid()
}

// ID returns the stop's internal number.
func (s Stop) ID() uint8 {
	return uint8(s)
}

// Valid reports whether s names a defined stop.
func (s Stop) Valid() bool {
	_, ok := stopNames[s]
	return ok
}

// String returns the display name, e.g. "Swell Open Diapason 8".
func (s Stop) String() string {
	if name, ok := stopNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stop(%d)", uint8(s))
}

// Stops returns every defined stop in id order. The slice is a copy.
func Stops() []Stop {
	return append([]Stop(nil), stopOrder...)
}

// ParseStop finds a stop by display name (case-insensitive) or by number.
func ParseStop(s string) (Stop, bool) {
	s = strings.TrimSpace(s)
	if stop, ok := stopsByName[strings.ToLower(s)]; ok {
		return stop, true
	}
	if id, err := strconv.Atoi(s); err == nil && id >= 0 && id < 256 {
		return StopByID(uint8(id))
	}
	return 0, false
}
