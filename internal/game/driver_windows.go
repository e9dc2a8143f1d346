//go:build windows

package game

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/logging"
)

var (
	moduser32               = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW         = moduser32.NewProc("FindWindowW")
	procSetForegroundWindow = moduser32.NewProc("SetForegroundWindow")
	procSetFocus            = moduser32.NewProc("SetFocus")
	procAttachThreadInput   = moduser32.NewProc("AttachThreadInput")
	procKeybdEvent          = moduser32.NewProc("keybd_event")
	procVkKeyScanW          = moduser32.NewProc("VkKeyScanW")
	procGetKeyboardLayout   = moduser32.NewProc("GetKeyboardLayout")
)

const (
	keyeventfKeyUp = 0x0002

	vkBack    = 0x08
	vkReturn  = 0x0D
	vkControl = 0x11
	vkLShift  = 0xA0
	vkA       = 0x41

	// focusAttempts * focusPoll bounds the wait for the game to take focus.
	focusAttempts = 40
	focusPoll     = 5 * time.Millisecond
)

// frenchLayouts are the language ids whose console key is '²'.
var frenchLayouts = map[uint16]bool{
	0x040C: true, 0x080C: true, 0x0C0C: true,
	0x100C: true, 0x140C: true, 0x180C: true,
}

type keyboardDriver struct {
	cfg        Config
	consoleKey rune
}

func newPlatformDriver(cfg Config) (Driver, error) {
	if err := moduser32.Load(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	d := &keyboardDriver{cfg: cfg}
	if cfg.ConsoleVK == 0 {
		d.consoleKey = consoleKeyFor(cfg.ConsoleKey)
	}
	return d, nil
}

// consoleKeyFor returns the configured key, or detects one from the
// keyboard layout of the calling thread.
func consoleKeyFor(configured string) rune {
	if r := []rune(configured); len(r) == 1 {
		return r[0]
	}

	hkl, _, _ := procGetKeyboardLayout.Call(0)
	langID := uint16(hkl & 0xFFFF)
	if frenchLayouts[langID] {
		logging.WithComponent("game").Debug("Detected French keyboard layout", "lang_id", fmt.Sprintf("0x%04X", langID))
		return '²'
	}
	return '`'
}

func (d *keyboardDriver) window() (windows.HWND, error) {
	title, err := windows.UTF16PtrFromString(d.cfg.WindowTitle)
	if err != nil {
		return 0, err
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(title)))
	if hwnd == 0 {
		return 0, fmt.Errorf("%w: %q", ErrWindowNotFound, d.cfg.WindowTitle)
	}
	return windows.HWND(hwnd), nil
}

// focus brings the game window to the foreground. Attaching to the game's
// input thread is what lets SetFocus succeed from another process.
func (d *keyboardDriver) focus() (windows.HWND, error) {
	hwnd, err := d.window()
	if err != nil {
		return 0, err
	}

	remote, _ := windows.GetWindowThreadProcessId(hwnd, nil)
	procAttachThreadInput.Call(uintptr(windows.GetCurrentThreadId()), uintptr(remote), 1)
	procSetFocus.Call(uintptr(hwnd))
	procSetForegroundWindow.Call(uintptr(hwnd))

	for i := 0; i < focusAttempts; i++ {
		if windows.GetForegroundWindow() == hwnd {
			break
		}
		time.Sleep(focusPoll)
	}
	return hwnd, nil
}

func (d *keyboardDriver) OpenConsole() error {
	if _, err := d.focus(); err != nil {
		return err
	}

	if d.cfg.ConsoleVK != 0 {
		d.press(byte(d.cfg.ConsoleVK))
	} else if !d.typeRune(d.consoleKey) {
		return fmt.Errorf("%w: console key %q not on keyboard layout", ErrCommandFailed, d.consoleKey)
	}

	time.Sleep(d.cfg.ConsoleOpenDelay)
	return nil
}

func (d *keyboardDriver) SendCommand(text string) bool {
	if _, err := d.focus(); err != nil {
		logging.WithComponent("game").Warn("Cannot focus game window", "error", err)
		return false
	}

	d.clearLine()

	ok := true
	for _, r := range text {
		if !d.typeRune(r) {
			ok = false
		}
	}
	d.press(vkReturn)
	return ok
}

// clearLine selects and deletes whatever is already typed in the console.
func (d *keyboardDriver) clearLine() {
	d.chord(vkControl, vkA)
	for i := 0; i < 3; i++ {
		d.press(vkBack)
	}
}

// typeRune maps r through the active layout and presses it, with shift when
// the layout requires it.
func (d *keyboardDriver) typeRune(r rune) bool {
	res, _, _ := procVkKeyScanW.Call(uintptr(uint16(r)))
	scan := int16(res)
	if scan == -1 || r > 0xFFFF {
		logging.WithComponent("game").Warn("Character not on keyboard layout", "char", string(r))
		return false
	}

	vk := byte(scan & 0xFF)
	if (scan>>8)&1 != 0 {
		d.chord(vkLShift, vk)
	} else {
		d.press(vk)
	}
	return true
}

func (d *keyboardDriver) press(vk byte) {
	keybd(vk, 0)
	time.Sleep(d.cfg.KeyPress)
	keybd(vk, keyeventfKeyUp)
	time.Sleep(d.cfg.KeyDelay)
}

func (d *keyboardDriver) chord(modifier, vk byte) {
	half := d.cfg.KeyPress / 2
	keybd(modifier, 0)
	time.Sleep(half)
	keybd(vk, 0)
	time.Sleep(d.cfg.KeyPress)
	keybd(vk, keyeventfKeyUp)
	time.Sleep(half)
	keybd(modifier, keyeventfKeyUp)
	time.Sleep(d.cfg.KeyDelay)
}

func keybd(vk byte, flags uint32) {
	procKeybdEvent.Call(uintptr(vk), 0, uintptr(flags), 0)
}
