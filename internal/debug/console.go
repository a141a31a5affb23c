package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/Versifine/freemove/internal/event"
	"github.com/Versifine/freemove/internal/mathx"
	"github.com/Versifine/freemove/internal/physics"
	"github.com/Versifine/freemove/internal/rig"
)

const (
	defaultTickInterval = time.Second / 60
	defaultMovePulse    = 180 * time.Millisecond
	yawStep             = 5.0
	pitchStep           = 5.0
)

// Character is the fixed-step character the console drives.
type Character interface {
	Tick(frame rig.InputFrame) rig.Snapshot
	Teleport(position mathx.Vec3, yaw float64)
	OnAnimEvent(e event.AnimEvent)
	PhysicsState() physics.State
	Snapshot() rig.Snapshot
}

type Console struct {
	character    Character
	tickInterval time.Duration
	movePulse    time.Duration
	out          io.Writer

	mu             sync.Mutex
	currentInput   rig.InputFrame
	pendingTurn    float64
	pendingLookUp  float64
	forwardUntil   time.Time
	backwardUntil  time.Time
	leftUntil      time.Time
	rightUntil     time.Time
	jumpLocked     bool
	movementLocked bool
	commandMode    bool
	commandBuf     []rune
	statusWidth    int
}

func NewConsole(character Character, tickInterval time.Duration) *Console {
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}
	return &Console{
		character:    character,
		tickInterval: tickInterval,
		movePulse:    defaultMovePulse,
		out:          os.Stdout,
	}
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.character == nil {
		return fmt.Errorf("console character is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprint(c.out, "[debug] console started (W/A/S/D pulse, Space jump, ] sprint, arrows, F footstep, :help)\r\n")
	c.renderStatusLine()

	go c.tickLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		c.handleKey(reader, b)
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.character.Tick(c.nextFrame(time.Now()))
			c.renderStatusLine()
		}
	}
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	now := time.Now()
	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulseForward(now)
	case 's', 'S':
		c.pulseBackward(now)
	case 'a', 'A':
		c.pulseLeft(now)
	case 'd', 'D':
		c.pulseRight(now)
	case ' ':
		c.toggle(func(in *rig.InputFrame) { in.Jump = !in.Jump })
	case ']':
		c.toggleSprint()
	case 'f', 'F':
		c.character.OnAnimEvent(event.AnimFootstep)
	case 'j', 'J':
		c.toggleJumpLock()
	case 'm', 'M':
		c.toggleMovementLock()
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		if reader == nil {
			return
		}
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.addRotation(-yawStep, 0)
		case 'C': // right
			c.addRotation(yawStep, 0)
		case 'A': // up
			c.addRotation(0, pitchStep)
		case 'B': // down
			c.addRotation(0, -pitchStep)
		}
	}
	c.renderStatusLine()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		ps := c.character.PhysicsState()
		fmt.Fprintf(c.out, "[debug] physics pos=(%.1f,%.1f,%.1f) vel=(%.1f,%.1f,%.1f) yaw=%.1f mode=%s ground=%t\r\n",
			ps.Position.X(), ps.Position.Y(), ps.Position.Z(),
			ps.Velocity.X(), ps.Velocity.Y(), ps.Velocity.Z(),
			ps.Rotation.Yaw, ps.Mode, ps.OnGround,
		)
	case "snap":
		fmt.Fprintf(c.out, "[debug] %s\r\n", c.character.Snapshot().String())
	case "tp":
		if len(parts) != 4 && len(parts) != 5 {
			fmt.Fprint(c.out, "[debug] usage: :tp <x> <y> <z> [yaw]\r\n")
			return
		}
		vals := make([]float64, len(parts)-1)
		for i, p := range parts[1:] {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				fmt.Fprint(c.out, "[debug] invalid tp args\r\n")
				return
			}
			vals[i] = v
		}
		yaw := c.character.PhysicsState().Rotation.Yaw
		if len(vals) == 4 {
			yaw = vals[3]
		}
		c.character.Teleport(mathx.Vec3{vals[0], vals[1], vals[2]}, yaw)
		fmt.Fprintf(c.out, "[debug] teleport queued to (%.1f, %.1f, %.1f) yaw=%.1f\r\n", vals[0], vals[1], vals[2], yaw)
	case "anim":
		if len(parts) != 2 {
			fmt.Fprint(c.out, "[debug] usage: :anim <EnableJump|DisableJump|EnableMovement|DisableMovement|Footstep>\r\n")
			return
		}
		e, err := event.ParseAnimEvent(parts[1])
		if err != nil {
			fmt.Fprintf(c.out, "[debug] %v\r\n", err)
			return
		}
		c.character.OnAnimEvent(e)
		fmt.Fprintf(c.out, "[debug] anim event %s queued\r\n", e)
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  W/S/A/D: pulse movement (~180ms)\r\n")
	fmt.Fprint(c.out, "  Space: toggle jump\r\n")
	fmt.Fprint(c.out, "  ]: toggle sprint\r\n")
	fmt.Fprint(c.out, "  Arrow Left/Right: turn -/+5\r\n")
	fmt.Fprint(c.out, "  Arrow Up/Down: look +/-5\r\n")
	fmt.Fprint(c.out, "  F: footstep notify\r\n")
	fmt.Fprint(c.out, "  J: toggle jump lock, M: toggle movement lock\r\n")
	fmt.Fprint(c.out, "  X: clear all input\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z> [yaw]\r\n")
	fmt.Fprint(c.out, "  :anim <name>\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :snap\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	input := c.currentInput
	width := c.statusWidth
	c.mu.Unlock()

	snap := c.character.Snapshot()

	line := fmt.Sprintf(
		"[FWD:%+.0f RGT:%+.0f SPR:%s JMP:%s | YAW:%.1f PIT:%.1f | X:%.1f Y:%.1f Z:%.1f %s g=%.2f hip=%.1f]",
		input.Forward,
		input.Right,
		boolLabel(input.Sprint),
		boolLabel(input.Jump),
		snap.Control.Yaw,
		snap.Control.Pitch,
		snap.Location.X(),
		snap.Location.Y(),
		snap.Location.Z(),
		snap.GravityState,
		snap.GravityScale,
		snap.IK.HipOffset,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) toggle(update func(*rig.InputFrame)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	update(&c.currentInput)
}

// addRotation accumulates degree deltas until the next frame consumes them.
func (c *Console) addRotation(turn, lookUp float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingTurn += turn
	c.pendingLookUp += lookUp
}

// nextFrame expires movement pulses and hands out the accumulated rotation
// exactly once.
func (c *Console) nextFrame(now time.Time) rig.InputFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyMovementPulseLocked(now)
	frame := c.currentInput
	frame.Turn = c.pendingTurn
	frame.LookUp = c.pendingLookUp
	c.pendingTurn = 0
	c.pendingLookUp = 0
	return frame
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (c *Console) pulseForward(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Forward = 1
	c.forwardUntil = now.Add(c.movePulse)
	c.backwardUntil = time.Time{}
}

func (c *Console) pulseBackward(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Forward = -1
	c.backwardUntil = now.Add(c.movePulse)
	c.forwardUntil = time.Time{}
}

func (c *Console) pulseLeft(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Right = -1
	c.leftUntil = now.Add(c.movePulse)
	c.rightUntil = time.Time{}
}

func (c *Console) pulseRight(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Right = 1
	c.rightUntil = now.Add(c.movePulse)
	c.leftUntil = time.Time{}
}

func (c *Console) applyMovementPulseLocked(now time.Time) {
	if !c.forwardUntil.IsZero() && !now.Before(c.forwardUntil) {
		c.currentInput.Forward = 0
		c.forwardUntil = time.Time{}
	}
	if !c.backwardUntil.IsZero() && !now.Before(c.backwardUntil) {
		c.currentInput.Forward = 0
		c.backwardUntil = time.Time{}
	}
	if !c.leftUntil.IsZero() && !now.Before(c.leftUntil) {
		c.currentInput.Right = 0
		c.leftUntil = time.Time{}
	}
	if !c.rightUntil.IsZero() && !now.Before(c.rightUntil) {
		c.currentInput.Right = 0
		c.rightUntil = time.Time{}
	}
}

func (c *Console) toggleSprint() {
	c.mu.Lock()
	c.currentInput.Sprint = !c.currentInput.Sprint
	enabled := c.currentInput.Sprint
	c.mu.Unlock()
	slog.Debug("debug sprint toggled", "enabled", enabled)
}

func (c *Console) toggleJumpLock() {
	c.mu.Lock()
	c.jumpLocked = !c.jumpLocked
	locked := c.jumpLocked
	c.mu.Unlock()
	if locked {
		c.character.OnAnimEvent(event.AnimDisableJump)
	} else {
		c.character.OnAnimEvent(event.AnimEnableJump)
	}
	slog.Debug("debug jump lock toggled", "locked", locked)
}

func (c *Console) toggleMovementLock() {
	c.mu.Lock()
	c.movementLocked = !c.movementLocked
	locked := c.movementLocked
	c.mu.Unlock()
	if locked {
		c.character.OnAnimEvent(event.AnimDisableMovement)
	} else {
		c.character.OnAnimEvent(event.AnimEnableMovement)
	}
	slog.Debug("debug movement lock toggled", "locked", locked)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.currentInput = rig.InputFrame{}
	c.pendingTurn = 0
	c.pendingLookUp = 0
	c.forwardUntil = time.Time{}
	c.backwardUntil = time.Time{}
	c.leftUntil = time.Time{}
	c.rightUntil = time.Time{}
	c.mu.Unlock()
}
