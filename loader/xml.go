package loader

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nathoo/mazecaves/types"
)

type xmlLevel struct {
	XMLName     xml.Name   `xml:"level"`
	Title       string     `xml:"title,attr"`
	Description string     `xml:"description,attr"`
	Message     string     `xml:"message,attr"`
	Version     string     `xml:"version,attr"`
	Floors      []xmlFloor `xml:"floor"`
}

type xmlFloor struct {
	ID     string     `xml:"id,attr"`
	Map    string     `xml:"map"`
	Player *xmlPlayer `xml:"player"`
	Rooms  []xmlRoom  `xml:",any"`
}

type xmlPlayer struct {
	RX string `xml:"rx,attr"`
	RY string `xml:"ry,attr"`
	X  string `xml:"x,attr"`
	Y  string `xml:"y,attr"`
}

// xmlRoom is any floor child other than map and player; its element name
// is the room letter.
type xmlRoom struct {
	XMLName      xml.Name
	Map          string         `xml:"map"`
	Transporters []xmlTransport `xml:"transporter"`
	Transmitters []xmlTransport `xml:"transmitter"`
	Objects      []xmlObject    `xml:",any"`
}

type xmlTransport struct {
	From string `xml:"from,attr"`
	To   string `xml:"to,attr"`
	TRX  string `xml:"trx,attr"`
	TRY  string `xml:"try,attr"`
	TX   string `xml:"tx,attr"`
	TY   string `xml:"ty,attr"`
}

// xmlAction carries the action attributes. A button may hold one inline
// action in its own attributes as well as child action elements.
type xmlAction struct {
	Type      string `xml:"type,attr"`
	Condition string `xml:"condition,attr"`
	Message   string `xml:"message,attr"`
	Floor     string `xml:"floor,attr"`
	TRX       string `xml:"trx,attr"`
	TRY       string `xml:"try,attr"`
	TX        string `xml:"tx,attr"`
	TY        string `xml:"ty,attr"`
	Key       string `xml:"key,attr"`
	Value     string `xml:"value,attr"`
}

// xmlObject is a block, door or button element.
type xmlObject struct {
	XMLName    xml.Name
	Piece      string `xml:"piece,attr"`
	X          string `xml:"x,attr"`
	Y          string `xml:"y,attr"`
	Collidable string `xml:"collidable,attr"`
	Notify     string `xml:"notify,attr"`
	Instant    string `xml:"instant,attr"`
	Inverted   string `xml:"inverted,attr"`
	xmlAction
	Actions []xmlAction `xml:"action"`
}

// ParseXML reads a level in the XML level format.
func ParseXML(r io.Reader) (*types.LevelDef, error) {
	var doc xmlLevel
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &types.SchemaError{Msg: fmt.Sprintf("malformed XML: %v", err)}
	}

	level := &types.LevelDef{
		Title:       doc.Title,
		Description: doc.Description,
		Message:     doc.Message,
		Floors:      map[int]types.FloorDef{},
	}
	if v := strings.TrimSpace(doc.Version); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &types.SchemaError{Where: "level", Msg: fmt.Sprintf("bad version %q", doc.Version)}
		}
		level.Version = n
	}

	for i, xf := range doc.Floors {
		id, err := strconv.Atoi(strings.TrimSpace(xf.ID))
		if err != nil {
			return nil, &types.SchemaError{Where: fmt.Sprintf("floor #%d", i+1), Msg: fmt.Sprintf("bad id %q", xf.ID)}
		}
		if _, dup := level.Floors[id]; dup {
			return nil, &types.SchemaError{Where: fmt.Sprintf("floor %d", id), Msg: "defined twice"}
		}
		f, err := convertFloor(id, xf)
		if err != nil {
			return nil, err
		}
		level.Floors[id] = f
	}
	return level, nil
}

func convertFloor(id int, xf xmlFloor) (types.FloorDef, error) {
	where := fmt.Sprintf("floor %d", id)
	f := types.FloorDef{ID: id, Map: xf.Map, Rooms: map[rune]types.RoomDef{}}

	if xf.Player != nil {
		var start types.PlayerStart
		fields := []struct {
			name, value string
			dst         *int
		}{
			{"rx", xf.Player.RX, &start.RX}, {"ry", xf.Player.RY, &start.RY},
			{"x", xf.Player.X, &start.X}, {"y", xf.Player.Y, &start.Y},
		}
		for _, fl := range fields {
			n, err := strconv.Atoi(strings.TrimSpace(fl.value))
			if err != nil {
				return f, &types.SchemaError{Where: where + " player", Msg: fmt.Sprintf("bad %s %q", fl.name, fl.value)}
			}
			*fl.dst = n
		}
		f.Player = &start
	}

	for _, xr := range xf.Rooms {
		ref, err := parseRoomRef(xr.XMLName.Local)
		if err != nil {
			// Rooms are found by map letter; other elements are not rooms.
			continue
		}
		if _, dup := f.Rooms[ref]; dup {
			return f, &types.SchemaError{Where: fmt.Sprintf("%s room %q", where, ref), Msg: "defined twice"}
		}
		rd, err := convertRoom(ref, xr)
		if err != nil {
			return f, &types.SchemaError{Where: fmt.Sprintf("%s room %q", where, ref), Msg: err.Error()}
		}
		f.Rooms[ref] = rd
	}
	return f, nil
}

func convertRoom(ref rune, xr xmlRoom) (types.RoomDef, error) {
	rd := types.RoomDef{Ref: ref, Map: xr.Map}
	for _, xt := range xr.Transporters {
		def, err := convertTransport(xt)
		if err != nil {
			return rd, fmt.Errorf("transporter: %w", err)
		}
		rd.Transporters = append(rd.Transporters, def)
	}
	for _, xt := range xr.Transmitters {
		def, err := convertTransport(xt)
		if err != nil {
			return rd, fmt.Errorf("transmitter: %w", err)
		}
		rd.Transmitters = append(rd.Transmitters, def)
	}
	for _, xo := range xr.Objects {
		obj, err := convertObject(xo)
		if err != nil {
			return rd, fmt.Errorf("%s: %w", xo.XMLName.Local, err)
		}
		rd.Objects = append(rd.Objects, obj)
	}
	return rd, nil
}

func convertTransport(xt xmlTransport) (types.TransportDef, error) {
	var def types.TransportDef
	from, err := parseDirection(xt.From)
	if err != nil {
		return def, err
	}
	def.From, def.To = from, from
	if xt.To != "" {
		if def.To, err = parseDirection(xt.To); err != nil {
			return def, err
		}
	}
	return def, convertCoords(
		coordAttr{"trx", xt.TRX, &def.RoomX},
		coordAttr{"try", xt.TRY, &def.RoomY},
		coordAttr{"tx", xt.TX, &def.TileX},
		coordAttr{"ty", xt.TY, &def.TileY},
	)
}

type coordAttr struct {
	name, value string
	dst         *types.Coord
}

func convertCoords(attrs ...coordAttr) error {
	for _, a := range attrs {
		c, err := parseCoord(a.value)
		if err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
		*a.dst = c
	}
	return nil
}

func convertObject(xo xmlObject) (types.ObjectDef, error) {
	var obj types.ObjectDef
	switch xo.XMLName.Local {
	case "block":
		obj.Kind = types.KindBlock
		obj.Collidable = parseFlag(xo.Collidable)
		obj.Notify = parseFlag(xo.Notify)
	case "door":
		obj.Kind = types.KindDoor
		obj.Collidable = parseFlag(xo.Collidable)
		obj.Notify = parseFlag(xo.Notify)
		obj.Key = doorKey(xo.Key)
		obj.Inverted = strings.EqualFold(strings.TrimSpace(xo.Inverted), "true")
	case "button":
		obj.Kind = types.KindButton
		obj.Notify = parseFlag(xo.Notify)
		obj.Instant = parseFlag(xo.Instant)
		if xo.Type != "" {
			act, err := convertAction(xo.xmlAction)
			if err != nil {
				return obj, err
			}
			obj.Actions = append(obj.Actions, act)
		}
		for i, xa := range xo.Actions {
			act, err := convertAction(xa)
			if err != nil {
				return obj, fmt.Errorf("action %d: %w", i+1, err)
			}
			obj.Actions = append(obj.Actions, act)
		}
	default:
		return obj, fmt.Errorf("unknown element")
	}

	var err error
	if obj.Piece, err = parsePiece(xo.Piece); err != nil {
		return obj, err
	}
	if obj.X, err = strconv.Atoi(strings.TrimSpace(xo.X)); err != nil {
		return obj, fmt.Errorf("bad x %q", xo.X)
	}
	if obj.Y, err = strconv.Atoi(strings.TrimSpace(xo.Y)); err != nil {
		return obj, fmt.Errorf("bad y %q", xo.Y)
	}
	return obj, nil
}

func convertAction(xa xmlAction) (types.ActionDef, error) {
	act := types.ActionDef{
		Type:      types.ActionType(strings.ToLower(strings.TrimSpace(xa.Type))),
		Condition: xa.Condition,
		Message:   xa.Message,
		Key:       xa.Key,
		Value:     xa.Value,
	}
	return act, convertCoords(
		coordAttr{"floor", xa.Floor, &act.Floor},
		coordAttr{"trx", xa.TRX, &act.RoomX},
		coordAttr{"try", xa.TRY, &act.RoomY},
		coordAttr{"tx", xa.TX, &act.TileX},
		coordAttr{"ty", xa.TY, &act.TileY},
	)
}
